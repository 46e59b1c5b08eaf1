// Package catalog defines the static data of the bagel shop: station
// definitions, the recipe list, and the economy constants. This package is
// PURE and must NOT import any infrastructure packages. All values are
// read-only; the engine never mutates catalog data.
package catalog

// Category classifies a recipe as food or beverage.
type Category string

const (
	CategoryFood     Category = "food"
	CategoryBeverage Category = "beverage"
)

// Station identifiers. These are the stable keys for the station map in the
// game state and the values referenced by recipes.
const (
	StationBagels    = "bagels"
	StationSpreads   = "spreads"
	StationGrill     = "grill"
	StationDeli      = "deli"
	StationPastry    = "pastry"
	StationBeverages = "beverages"
)

// Economy constants.
const (
	// UpgradeCostMultiplier makes each equipment/quality level strictly more
	// expensive than the last: cost = base * multiplier^currentLevel.
	UpgradeCostMultiplier = 1.6

	// StorageCostPerLevel prices a storage upgrade linearly:
	// cost = StorageCostPerLevel * (currentLevel + 1).
	StorageCostPerLevel = 50.0

	// MaxStorageLevel caps the storage track.
	MaxStorageLevel = 3

	// SpeedBonusPerLevel raises a station's speed multiplier per equipment
	// level above 1: mult(level) = 1 + (level-1)*SpeedBonusPerLevel.
	SpeedBonusPerLevel = 0.25

	// QualityBonusPerLevel adds to an order's quality multiplier per quality
	// level above 1 on each involved station.
	QualityBonusPerLevel = 0.12

	// BeverageProbability is the chance a generated order carries a beverage
	// when the beverage station is unlocked.
	BeverageProbability = 0.6

	// QueueCap bounds the waiting customer queue.
	QueueCap = 5

	// HistoryCap bounds the sale history (newest first).
	HistoryCap = 5

	// AutomateRegisterCost buys automatic order taking.
	AutomateRegisterCost = 500.0

	// SecondRegisterCost buys the second register; requires automation first.
	SecondRegisterCost = 1200.0

	// StartingCurrency seeds a fresh game.
	StartingCurrency = 150.0

	// PrestigeThreshold is the lifetime-earnings gate for a prestige reset.
	PrestigeThreshold = 50000.0
)

var storageCapacity = [MaxStorageLevel]int{3, 5, 8}

// StorageCapacity returns how many ingredients a station can hold at the given
// storage level. Levels outside [1,3] clamp to the nearest bound.
func StorageCapacity(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxStorageLevel {
		level = MaxStorageLevel
	}
	return storageCapacity[level-1]
}

// SpeedMultiplier converts an equipment level into a station speed factor.
// Level 1 is baseline 1.0x; level 5 works twice as fast.
func SpeedMultiplier(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 + float64(level-1)*SpeedBonusPerLevel
}

// StationDef describes one station's static catalog entry.
type StationDef struct {
	ID                 string
	Name               string
	UnlockCost         float64
	EquipmentBaseCost  float64
	QualityBaseCost    float64
	ManagerCost        float64
	IngredientCost     float64
	Ingredients        []string // full unlock order; AddIngredient walks this
	DefaultIngredients []string // seeded on unlock, must fit storage level 1
	StartsUnlocked     bool
}

// Recipe describes one purchasable menu item.
type Recipe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Stations    []string `json:"stations"`
	Ingredients []string `json:"ingredients"`
	BasePrice   float64  `json:"base_price"`
	BaseTime    float64  `json:"base_time"` // seconds at baseline speed
}

// stations is the authoritative station list, in shop layout order.
var stations = []StationDef{
	{
		ID:                 StationBagels,
		Name:               "Bagel Oven",
		UnlockCost:         100,
		EquipmentBaseCost:  10,
		QualityBaseCost:    12,
		ManagerCost:        60,
		IngredientCost:     15,
		Ingredients:        []string{"plain", "sesame", "everything", "poppy", "onion", "cinnamon_raisin", "asiago", "blueberry"},
		DefaultIngredients: []string{"plain", "sesame", "everything"},
		StartsUnlocked:     true,
	},
	{
		ID:                 StationSpreads,
		Name:               "Spread Bar",
		UnlockCost:         250,
		EquipmentBaseCost:  14,
		QualityBaseCost:    16,
		ManagerCost:        90,
		IngredientCost:     20,
		Ingredients:        []string{"cream_cheese", "butter", "scallion_cream_cheese", "lox_spread", "honey_walnut", "hummus"},
		DefaultIngredients: []string{"cream_cheese", "butter"},
	},
	{
		ID:                 StationGrill,
		Name:               "Breakfast Grill",
		UnlockCost:         500,
		EquipmentBaseCost:  20,
		QualityBaseCost:    22,
		ManagerCost:        140,
		IngredientCost:     30,
		Ingredients:        []string{"egg", "cheese", "bacon", "sausage", "ham"},
		DefaultIngredients: []string{"egg", "cheese"},
	},
	{
		ID:                 StationDeli,
		Name:               "Deli Counter",
		UnlockCost:         900,
		EquipmentBaseCost:  26,
		QualityBaseCost:    28,
		ManagerCost:        200,
		IngredientCost:     40,
		Ingredients:        []string{"turkey", "lettuce", "tomato", "lox", "red_onion", "capers", "whitefish"},
		DefaultIngredients: []string{"turkey", "lettuce"},
	},
	{
		ID:                 StationPastry,
		Name:               "Pastry Case",
		UnlockCost:         1400,
		EquipmentBaseCost:  32,
		QualityBaseCost:    34,
		ManagerCost:        260,
		IngredientCost:     50,
		Ingredients:        []string{"croissant", "muffin", "babka", "rugelach", "black_white_cookie"},
		DefaultIngredients: []string{"croissant", "muffin"},
	},
	{
		ID:                 StationBeverages,
		Name:               "Espresso Bar",
		UnlockCost:         2000,
		EquipmentBaseCost:  38,
		QualityBaseCost:    40,
		ManagerCost:        320,
		IngredientCost:     60,
		Ingredients:        []string{"drip_coffee", "milk", "espresso", "tea", "orange_juice", "chai", "cocoa"},
		DefaultIngredients: []string{"drip_coffee", "milk"},
	},
}

// recipes is the authoritative menu, foods first, then beverages.
var recipes = []Recipe{
	{ID: "plain_bagel", Name: "Fresh Bagel", Category: CategoryFood,
		Stations: []string{StationBagels}, Ingredients: []string{"plain"},
		BasePrice: 3.0, BaseTime: 4},
	{ID: "buttered_bagel", Name: "Buttered Bagel", Category: CategoryFood,
		Stations: []string{StationBagels, StationSpreads}, Ingredients: []string{"plain", "butter"},
		BasePrice: 4.5, BaseTime: 6},
	{ID: "bagel_schmear", Name: "Bagel & Schmear", Category: CategoryFood,
		Stations: []string{StationBagels, StationSpreads}, Ingredients: []string{"sesame", "cream_cheese"},
		BasePrice: 5.5, BaseTime: 7},
	{ID: "scallion_special", Name: "Scallion Special", Category: CategoryFood,
		Stations: []string{StationBagels, StationSpreads}, Ingredients: []string{"everything", "scallion_cream_cheese"},
		BasePrice: 6.5, BaseTime: 8},
	{ID: "egg_sandwich", Name: "Egg Sandwich", Category: CategoryFood,
		Stations: []string{StationBagels, StationGrill}, Ingredients: []string{"everything", "egg", "cheese"},
		BasePrice: 8.0, BaseTime: 12},
	{ID: "bacon_egg_cheese", Name: "Bacon Egg & Cheese", Category: CategoryFood,
		Stations: []string{StationBagels, StationGrill}, Ingredients: []string{"plain", "bacon", "egg", "cheese"},
		BasePrice: 9.5, BaseTime: 14},
	{ID: "turkey_club", Name: "Turkey Club", Category: CategoryFood,
		Stations: []string{StationBagels, StationDeli}, Ingredients: []string{"sesame", "turkey", "lettuce", "tomato"},
		BasePrice: 10.0, BaseTime: 13},
	{ID: "lox_sandwich", Name: "Lox & Schmear", Category: CategoryFood,
		Stations: []string{StationBagels, StationSpreads, StationDeli}, Ingredients: []string{"everything", "cream_cheese", "lox", "capers"},
		BasePrice: 14.0, BaseTime: 18},
	{ID: "whitefish_bagel", Name: "Whitefish Salad Bagel", Category: CategoryFood,
		Stations: []string{StationBagels, StationDeli}, Ingredients: []string{"onion", "whitefish", "red_onion"},
		BasePrice: 12.5, BaseTime: 16},
	{ID: "croissant", Name: "Butter Croissant", Category: CategoryFood,
		Stations: []string{StationPastry}, Ingredients: []string{"croissant"},
		BasePrice: 4.0, BaseTime: 3},
	{ID: "muffin", Name: "Morning Muffin", Category: CategoryFood,
		Stations: []string{StationPastry}, Ingredients: []string{"muffin"},
		BasePrice: 3.5, BaseTime: 2},
	{ID: "babka_slice", Name: "Babka Slice", Category: CategoryFood,
		Stations: []string{StationPastry}, Ingredients: []string{"babka"},
		BasePrice: 5.0, BaseTime: 3},

	{ID: "drip_coffee", Name: "Drip Coffee", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"drip_coffee"},
		BasePrice: 2.5, BaseTime: 2},
	{ID: "latte", Name: "Latte", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"espresso", "milk"},
		BasePrice: 4.5, BaseTime: 5},
	{ID: "cappuccino", Name: "Cappuccino", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"espresso", "milk"},
		BasePrice: 4.75, BaseTime: 5},
	{ID: "hot_tea", Name: "Hot Tea", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"tea"},
		BasePrice: 2.75, BaseTime: 2},
	{ID: "orange_juice", Name: "Orange Juice", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"orange_juice"},
		BasePrice: 3.25, BaseTime: 1},
	{ID: "chai_latte", Name: "Chai Latte", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"chai", "milk"},
		BasePrice: 4.25, BaseTime: 4},
	{ID: "hot_cocoa", Name: "Hot Cocoa", Category: CategoryBeverage,
		Stations: []string{StationBeverages}, Ingredients: []string{"cocoa", "milk"},
		BasePrice: 3.75, BaseTime: 3},
}

var stationIndex = func() map[string]*StationDef {
	idx := make(map[string]*StationDef, len(stations))
	for i := range stations {
		idx[stations[i].ID] = &stations[i]
	}
	return idx
}()

// Stations returns the station definitions in shop layout order.
func Stations() []StationDef {
	return stations
}

// StationByID looks up a station definition.
func StationByID(id string) (StationDef, bool) {
	def, ok := stationIndex[id]
	if !ok {
		return StationDef{}, false
	}
	return *def, true
}

// Recipes returns the full menu.
func Recipes() []Recipe {
	return recipes
}

// FoodRecipes returns every food entry in catalog order.
func FoodRecipes() []Recipe {
	var out []Recipe
	for _, r := range recipes {
		if r.Category == CategoryFood {
			out = append(out, r)
		}
	}
	return out
}

// BeverageRecipes returns every beverage entry in catalog order.
func BeverageRecipes() []Recipe {
	var out []Recipe
	for _, r := range recipes {
		if r.Category == CategoryBeverage {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns an independent copy of the recipe, safe to embed in mutable
// state without sharing slice backing arrays with the catalog.
func (r Recipe) Clone() Recipe {
	out := r
	out.Stations = append([]string(nil), r.Stations...)
	out.Ingredients = append([]string(nil), r.Ingredients...)
	return out
}
