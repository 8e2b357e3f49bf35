package models

// CardSequence is the per-prefix lock row. Allocation locks it for the length
// of the insert transaction; the next number itself comes from the card table.
type CardSequence struct {
	Prefix string `gorm:"primaryKey;type:varchar(16)"`
}

func (CardSequence) TableName() string { return "card_sequences" }
