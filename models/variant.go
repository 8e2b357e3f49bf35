package models

// Variant describes one card program: its table, identifier prefix and the
// names the HTTP API uses for it.
type Variant struct {
	Key        string // "senior" or "youth"
	Label      string
	Prefix     string
	Table      string
	IDField    string // JSON body field and checkID query key
	QueryKey   string // DELETE query key
	APIPath    string // /api/<APIPath>
	AssetRoute string // /api/<AssetRoute>/...
}

const (
	VariantSenior = "senior"
	VariantYouth  = "youth"
)

func SeniorVariant(prefix string) Variant {
	return Variant{
		Key:        VariantSenior,
		Label:      "Senior Citizen",
		Prefix:     prefix,
		Table:      SeniorCard{}.TableName(),
		IDField:    "scid",
		QueryKey:   "scid",
		APIPath:    "scid",
		AssetRoute: "scpics",
	}
}

func YouthVariant(prefix string) Variant {
	return Variant{
		Key:        VariantYouth,
		Label:      "Youth",
		Prefix:     prefix,
		Table:      YouthCard{}.TableName(),
		IDField:    "youthid",
		QueryKey:   "YouthID",
		APIPath:    "youthid",
		AssetRoute: "youthpics",
	}
}
