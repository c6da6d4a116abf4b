package datasets

import "strconv"

// Dataset is a download link for a public plant-disease image dataset.
type Dataset struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Link string `json:"link"`
}

const mirror = "http://s3-hcm-r1.longvan.net/iec-dataset/"

var names = []string{
	"A-Citrus-Fruits-and-Leaves-Dataset",
	"Citrus-Leaves-Prepared-Dataset",
	"Corn-Disease-Dataset",
	"Corn-Leaf-Diseases-Dataset",
	"Corn-Leaf-Infection-Dataset",
	"DiaMOS-Dataset",
	"LeLePhid-Dataset",
	"Red-Rot-Sugarcane-Disease-Leaf-Dataset",
	"Rice-Disease-Dataset",
	"Rice-Diseases-Image-Dataset",
	"Rice-Leaf-Disease-Image-Samples-Dataset",
	"Rice-Leaf-Diseases-Dataset",
	"RoCoLe-Dataset",
	"Sugarcane-Disease-Dataset",
	"The-Cotton-Leaf-Dataset",
	"The-Cotton-Leaf-Disease-Dataset",
	"The-Dhan-Shomadhan-Dataset",
	"The-Potato-Leaf-Dataset",
	"The-Soybean-Leaf-Dataset",
	"The-Tomato-Leaf-Image-Dataset",
	"Wheat-Disease-Detection-Dataset",
	"Wheat-Fungi-Diseases-Dataset",
	"Wheat-Leaf-Dataset",
	"Yellow-Rush-19-Dataset",
	"iCassava-2019-Dataset",
}

var catalog = build()

func build() []Dataset {
	out := make([]Dataset, 0, len(names))

	for i, n := range names {
		out = append(out, Dataset{
			Name: n,
			ID:   strconv.Itoa(i + 1),
			Link: mirror + n + ".zip",
		})
	}

	return out
}

// Catalog returns the static dataset list. Callers must not mutate it.
func Catalog() []Dataset {
	return catalog
}
