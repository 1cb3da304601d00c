package models

import (
	"gorm.io/datatypes"
)

// Multidata ist der gemeinsame Basisdatensatz für Proteine und Komplexe.
type Multidata struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Uniprot string `json:"uniprot" gorm:"column:uniprot;uniqueIndex;not null"`

	// Flags, immer als Boolean gespeichert
	Receptor          bool `json:"receptor" gorm:"default:false"`
	ReceptorHighlight bool `json:"receptor_highlight" gorm:"default:false"`
	Adhesion          bool `json:"adhesion" gorm:"default:false"`
	Other             bool `json:"other" gorm:"default:false"`
	Transporter       bool `json:"transporter" gorm:"default:false"`
	SecretedHighlight bool `json:"secreted_highlight" gorm:"default:false"`

	// Bekannte Metadaten-Spalten
	EntryName     string `json:"entry_name,omitempty"`
	ReceptorDesc  string `json:"receptor_desc,omitempty" gorm:"type:text"`
	OtherDesc     string `json:"other_desc,omitempty" gorm:"type:text"`
	SecretedDesc  string `json:"secreted_desc,omitempty" gorm:"type:text"`
	PDBStructure  string `json:"pdb_structure,omitempty" gorm:"column:pdb_structure"`
	PDBID         string `json:"pdb_id,omitempty" gorm:"column:pdb_id"`
	Stoichiometry string `json:"stoichiometry,omitempty"`
	Comments      string `json:"comments,omitempty" gorm:"type:text"`

	// Alle übrigen Spalten der Quelldatei, unverändert
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Multidata) TableName() string {
	return "multidata"
}

// Flag-Spalten, die beim Laden nach Boolean konvertiert werden.
const (
	ColReceptor          = "receptor"
	ColReceptorHighlight = "receptor_highlight"
	ColAdhesion          = "adhesion"
	ColOther             = "other"
	ColTransporter       = "transporter"
	ColSecretedHighlight = "secreted_highlight"
)

// FlagColumns listet die Flag-Spalten in Dateireihenfolge.
var FlagColumns = []string{
	ColReceptor, ColReceptorHighlight, ColAdhesion,
	ColOther, ColTransporter, ColSecretedHighlight,
}

// SetFlag setzt das Flag zur Spalte name. Unbekannte Namen liefern false.
func (m *Multidata) SetFlag(name string, v bool) bool {
	switch name {
	case ColReceptor:
		m.Receptor = v
	case ColReceptorHighlight:
		m.ReceptorHighlight = v
	case ColAdhesion:
		m.Adhesion = v
	case ColOther:
		m.Other = v
	case ColTransporter:
		m.Transporter = v
	case ColSecretedHighlight:
		m.SecretedHighlight = v
	default:
		return false
	}
	return true
}

// SetField schreibt eine bekannte Metadaten-Spalte. Unbekannte Namen liefern false.
func (m *Multidata) SetField(name, value string) bool {
	switch name {
	case "entry_name":
		m.EntryName = value
	case "receptor_desc":
		m.ReceptorDesc = value
	case "other_desc":
		m.OtherDesc = value
	case "secreted_desc":
		m.SecretedDesc = value
	case "pdb_structure":
		m.PDBStructure = value
	case "pdb_id":
		m.PDBID = value
	case "stoichiometry":
		m.Stoichiometry = value
	case "comments":
		m.Comments = value
	default:
		return false
	}
	return true
}
