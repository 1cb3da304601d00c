package models

// Protein markiert einen Multidata-Datensatz als einzelnes Protein (1:1).
type Protein struct {
	ID                 uint `json:"id" gorm:"primaryKey"`
	ProteinMultidataID uint `json:"protein_multidata_id" gorm:"uniqueIndex;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Protein) TableName() string {
	return "protein"
}
