package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/datasets"
)

type DatasetsHandler struct{}

func NewDatasetsHandler() *DatasetsHandler {
	return &DatasetsHandler{}
}

// ListLinks serves the static catalog of plant-disease dataset mirrors.
// The catalog only changes on deploy, so it is served with an ETag.
func (h *DatasetsHandler) ListLinks(ctx *gin.Context) {
	respondJSONWithETag(ctx, http.StatusOK, datasets.Catalog())
}
