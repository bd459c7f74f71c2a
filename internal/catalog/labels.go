package catalog

import "fmt"

// AllCategories is the selector sentinel meaning "no category filter".
const AllCategories = "all"

// OtherLabel groups products whose category is absent or not in the brand table.
const OtherLabel = "Other"

// Labels maps exactly three category tags to display labels; anything else is Other.
type Labels [3]struct {
	Tag   string
	Label string
}

// Label resolves a raw category tag.
func (l Labels) Label(tag string) string {
	if tag == "" {
		return OtherLabel
	}
	for _, e := range l {
		if e.Tag == tag {
			return e.Label
		}
	}
	return OtherLabel
}

var (
	FoodLabels = Labels{
		{Tag: "chicken", Label: "Chicken"},
		{Tag: "red_meat", Label: "Red Meat"},
		{Tag: "chilli_condiments", Label: "Chilli Condiments"},
	}
	VisionLabels = Labels{
		{Tag: "eyeglasses", Label: "Eyeglasses"},
		{Tag: "contact_lenses", Label: "Contact Lenses"},
		{Tag: "sunglasses", Label: "Sunglasses"},
	}
)

// Brand is one storefront skin.
type Brand struct {
	Key    string
	Name   string
	Labels Labels

	// About and contact page copy
	Tagline string
	Story   string
	Email   string
	Phone   string
	Address string
}

var brands = map[string]Brand{
	"food": {
		Key: "food", Name: "Googoo Foods", Labels: FoodLabels,
		Tagline: "Bringing comfort and tradition to your table.",
		Story:   "A mother and daughter kitchen sharing small-batch pickles, chutneys and smoked meats made from family recipes.",
		Email:   "hello@googoofoods.example",
		Phone:   "(+91) 98765 43210",
		Address: "Sagolband Sayang Leirak, Imphal West, Manipur 795004",
	},
	"vision": {
		Key: "vision", Name: "ClearSight Eye Clinic", Labels: VisionLabels,
		Tagline: "Eye care and eyewear under one roof.",
		Story:   "Optometrists and opticians fitting frames, lenses and sunglasses to every prescription.",
		Email:   "care@clearsight.example",
		Phone:   "(+91) 91234 56789",
		Address: "Paona Bazar, Imphal West, Manipur 795001",
	},
}

// BrandFor looks up a skin by key.
func BrandFor(key string) (Brand, error) {
	b, ok := brands[key]
	if !ok {
		return Brand{}, fmt.Errorf("unknown brand %q", key)
	}
	return b, nil
}
