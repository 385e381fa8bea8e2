package sample

// poolEntry is one catalog ingredient fixture.
type poolEntry struct {
	name     string
	category string
}

// ingredientPool is the fixture catalog the generator draws from. Order
// matters: an ingredient's pool index fixes its noise coordinate.
var ingredientPool = []poolEntry{
	{"Cumin", "spice"},
	{"Coriander", "spice"},
	{"Turmeric", "spice"},
	{"Paprika", "spice"},
	{"Cinnamon", "spice"},
	{"Clove", "spice"},
	{"Cardamom", "spice"},
	{"Black Pepper", "spice"},
	{"Saffron", "spice"},
	{"Sumac", "spice"},
	{"Fennel Seed", "spice"},
	{"Star Anise", "spice"},
	{"Basil", "herb"},
	{"Cilantro", "herb"},
	{"Mint", "herb"},
	{"Rosemary", "herb"},
	{"Thyme", "herb"},
	{"Oregano", "herb"},
	{"Dill", "herb"},
	{"Parsley", "herb"},
	{"Sage", "herb"},
	{"Lemongrass", "herb"},
	{"Onion", "vegetable"},
	{"Garlic", "vegetable"},
	{"Tomato", "vegetable"},
	{"Eggplant", "vegetable"},
	{"Zucchini", "vegetable"},
	{"Spinach", "vegetable"},
	{"Kale", "vegetable"},
	{"Carrot", "vegetable"},
	{"Beet", "vegetable"},
	{"Potato", "vegetable"},
	{"Pumpkin", "vegetable"},
	{"Cauliflower", "vegetable"},
	{"Leek", "vegetable"},
	{"Celery", "vegetable"},
	{"Bell Pepper", "vegetable"},
	{"Okra", "vegetable"},
	{"Chicken", "protein"},
	{"Lamb", "protein"},
	{"Beef", "protein"},
	{"Duck", "protein"},
	{"Salmon", "protein"},
	{"Cod", "protein"},
	{"Shrimp", "protein"},
	{"Tofu", "protein"},
	{"Chickpea", "protein"},
	{"Lentil", "protein"},
	{"Black Bean", "protein"},
	{"Egg", "protein"},
	{"Rice", "grain"},
	{"Bulgur", "grain"},
	{"Quinoa", "grain"},
	{"Barley", "grain"},
	{"Couscous", "grain"},
	{"Cornmeal", "grain"},
	{"Noodle", "grain"},
	{"Yogurt", "dairy"},
	{"Butter", "dairy"},
	{"Ghee", "dairy"},
	{"Feta", "dairy"},
	{"Parmesan", "dairy"},
	{"Olive Oil", "fat"},
	{"Coconut Milk", "fat"},
	{"Sesame", "fat"},
	{"Walnut", "fat"},
	{"Almond", "fat"},
	{"Ginger", "aromatic"},
	{"Chili", "aromatic"},
	{"Lime", "aromatic"},
	{"Lemon", "aromatic"},
	{"Tamarind", "aromatic"},
	{"Miso", "aromatic"},
	{"Soy Sauce", "aromatic"},
	{"Honey", "sweetener"},
	{"Date", "sweetener"},
}

// cuisineNames seeds the cuisine list; past the pool the generator
// numbers them.
var cuisineNames = []string{
	"levantine",
	"szechuan",
	"oaxacan",
	"provencal",
	"keralan",
	"tuscan",
	"anatolian",
	"bengali",
	"persian",
	"andean",
	"ethiopian",
	"hokkaido",
}

// dishForms name the shape of a generated recipe.
var dishForms = []string{
	"stew", "roast", "salad", "broth", "pilaf", "curry", "bake", "fry", "soup", "braise",
}
