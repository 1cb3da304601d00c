package models

// Complex registriert einen Multidata-Datensatz als Komplex.
type Complex struct {
	ComplexMultidataID uint `json:"complex_multidata_id" gorm:"primaryKey;autoIncrement:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (Complex) TableName() string {
	return "complex"
}

// ComplexComposition ist ein Mitgliedspaar (Komplex, Protein).
// Ohne Primärschlüssel: doppelte Paare entstehen nur, wenn die Quelle sie doppelt führt.
type ComplexComposition struct {
	ComplexMultidataID uint `json:"complex_multidata_id" gorm:"index;not null"`
	ProteinMultidataID uint `json:"protein_multidata_id" gorm:"index;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (ComplexComposition) TableName() string {
	return "complex_composition"
}
