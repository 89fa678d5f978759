package feed

// Канонические поля записи фида
const (
	FieldVIN          = "vin"
	FieldTitle        = "title"
	FieldPrice        = "price"
	FieldMileage      = "mileage"
	FieldPhone        = "phone"
	FieldYear         = "year"
	FieldMake         = "make"
	FieldModel        = "model"
	FieldTrim         = "trim"
	FieldBody         = "body"
	FieldDrivetrain   = "drivetrain"
	FieldTransmission = "transmission"
	FieldFuel         = "fuel"
	FieldColorExt     = "colorExt"
	FieldColorInt     = "colorInt"
	FieldCity         = "city"
	FieldState        = "state"
	FieldLat          = "lat"
	FieldLon          = "lon"
	FieldURL          = "url"
	FieldImages       = "images"
	FieldSourceID     = "sourceId"
	FieldPostedAt     = "postedAt"
	FieldUpdatedAt    = "updatedAt"
)

// Synonyms - ключи сырой записи для каждого канонического поля в порядке приоритета
var Synonyms = map[string][]string{
	FieldVIN:          {"vin", "VIN"},
	FieldTitle:        {"title", "Title", "name", "Name", "description", "Description"},
	FieldPrice:        {"price", "Price", "listPrice", "ListPrice"},
	FieldMileage:      {"mileage", "Mileage", "odometer", "Odometer"},
	FieldPhone:        {"phone", "Phone", "dealerPhone", "contactPhone"},
	FieldYear:         {"year", "Year"},
	FieldMake:         {"make", "Make"},
	FieldModel:        {"model", "Model"},
	FieldTrim:         {"trim", "Trim"},
	FieldBody:         {"body", "Body", "bodyStyle"},
	FieldDrivetrain:   {"drivetrain", "Drivetrain"},
	FieldTransmission: {"transmission", "Transmission"},
	FieldFuel:         {"fuel", "Fuel"},
	FieldColorExt:     {"colorExt", "exteriorColor", "ExteriorColor"},
	FieldColorInt:     {"colorInt", "interiorColor", "InteriorColor"},
	FieldCity:         {"city", "City"},
	FieldState:        {"state", "State"},
	FieldLat:          {"lat", "latitude", "Latitude"},
	FieldLon:          {"lon", "longitude", "Longitude"},
	FieldURL:          {"url", "URL", "link", "Link"},
	FieldImages:       {"images", "photos", "Photos"},
	FieldSourceID:     {"sourceId", "SourceId", "stockNumber", "StockNumber", "id", "ID"},
	FieldPostedAt:     {"postedAt", "PostedAt", "listedAt", "ListedAt"},
	FieldUpdatedAt:    {"updatedAt", "UpdatedAt", "modifiedAt", "ModifiedAt", "feedTimestamp"},
}

// pickFirst возвращает первое присутствующее и не-null значение среди синонимов поля
func pickFirst(raw map[string]any, field string) any {
	for _, key := range Synonyms[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
