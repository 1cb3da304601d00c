package services

import (
	"context"

	"gorm.io/gorm"

	"cellcommdb/models"
)

// ComplexView ist ein Komplex mit den Schlüsseln seiner Mitglieder.
type ComplexView struct {
	models.Multidata
	Proteins []string `json:"proteins"`
}

type memberRow struct {
	ComplexMultidataID uint
	Uniprot            string
}

// ListComplexes liefert alle registrierten Komplexe, sortiert nach Schlüssel.
func ListComplexes(ctx context.Context, db *gorm.DB) ([]ComplexView, error) {
	var complexes []models.Multidata
	err := db.WithContext(ctx).
		Joins("JOIN complex ON complex.complex_multidata_id = multidata.id").
		Order("multidata.uniprot").
		Find(&complexes).Error
	if err != nil {
		return nil, err
	}
	return withMembers(ctx, db, complexes)
}

// GetComplex liefert einen Komplex oder gorm.ErrRecordNotFound.
func GetComplex(ctx context.Context, db *gorm.DB, uniprot string) (*ComplexView, error) {
	var m models.Multidata
	err := db.WithContext(ctx).
		Joins("JOIN complex ON complex.complex_multidata_id = multidata.id").
		Where("multidata.uniprot = ?", normalizeKey(uniprot)).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	views, err := withMembers(ctx, db, []models.Multidata{m})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func withMembers(ctx context.Context, db *gorm.DB, complexes []models.Multidata) ([]ComplexView, error) {
	views := make([]ComplexView, len(complexes))
	if len(complexes) == 0 {
		return views, nil
	}
	ids := make([]uint, len(complexes))
	for i, c := range complexes {
		ids[i] = c.ID
	}

	var members []memberRow
	err := db.WithContext(ctx).
		Model(&models.ComplexComposition{}).
		Select("complex_composition.complex_multidata_id, multidata.uniprot").
		Joins("JOIN multidata ON multidata.id = complex_composition.protein_multidata_id").
		Where("complex_composition.complex_multidata_id IN ?", ids).
		Order("multidata.uniprot").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	byComplex := make(map[uint][]string, len(complexes))
	for _, m := range members {
		byComplex[m.ComplexMultidataID] = append(byComplex[m.ComplexMultidataID], m.Uniprot)
	}
	for i, c := range complexes {
		proteins := byComplex[c.ID]
		if proteins == nil {
			proteins = []string{}
		}
		views[i] = ComplexView{Multidata: c, Proteins: proteins}
	}
	return views, nil
}
