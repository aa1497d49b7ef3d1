package model

// AllModels 所有模型，用于 AutoMigrate
var AllModels = []interface{}{
	&User{},
	&Creator{},
	&Fan{},
	&ChatMessage{},
	&CatalogItem{},
	&Purchase{},
	&AIUsage{},
}
