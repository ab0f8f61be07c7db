package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/nfe"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Company{}, &models.Product{},
		&models.XMLUpload{}, &models.Report{}, &models.Session{}, &models.AuditLog{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	user := models.User{Email: "ops@agro.test", PasswordHash: "x", FullName: "Ops"}
	require.NoError(t, db.Create(&user).Error)

	ref := "NPK Granulado"
	company := models.Company{
		UserID:           user.ID,
		CompanyName:      "Fertilizantes Parana LTDA",
		MapaRegistration: "PR-00551",
		Products: []models.Product{
			{ProductName: "ADUBO NPK 15-15-15", MapaRegistration: "6.000001", ProductReference: &ref},
			{ProductName: "UREIA AGRICOLA", MapaRegistration: "6.000002"},
		},
	}
	require.NoError(t, db.Create(&company).Error)
	return user.ID
}

func invoice(number, emitter, uf string, items ...nfe.Item) *nfe.Invoice {
	issued := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	return &nfe.Invoice{
		Number:   number,
		IssuedAt: &issued,
		Emitter: nfe.Party{
			Name:    emitter,
			Address: nfe.Address{UF: uf},
		},
		Items: items,
	}
}

func item(desc, unit, qty string) nfe.Item {
	return nfe.Item{
		Description: desc,
		Unit:        unit,
		Quantity:    decimal.RequireFromString(qty),
	}
}

func TestProcessAggregatesByRegistration(t *testing.T) {
	db := setupDB(t)
	userID := seedCatalog(t, db)

	p, err := NewProcessor(db, userID)
	require.NoError(t, err)

	result, err := p.Process([]*nfe.Invoice{
		invoice("100", "Fertilizantes Parana LTDA", "PR",
			item("ADUBO NPK 15-15-15", "KG", "2500")),
		invoice("101", "Fertilizantes Parana LTDA", "PR",
			item("ADUBO NPK 15-15-15", "KG", "1500"),
			item("UREIA AGRICOLA", "TON", "3")),
		invoice("102", "Fertilizantes Parana LTDA", "EX",
			item("ADUBO NPK 15-15-15", "KG", "1000")),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalNFEs)
	require.Len(t, result.Rows, 2)

	// rows come back sorted by full registration
	npk := result.Rows[0]
	assert.Equal(t, "PR-00551-6.000001", npk.MapaRegistration)
	assert.Equal(t, "ADUBO NPK 15-15-15", npk.ProductName)
	assert.Equal(t, "NPK Granulado", npk.ProductReference)
	assert.Equal(t, "Tonelada", npk.Unit)
	assert.Equal(t, "4", npk.QuantityDomestic)
	assert.Equal(t, "1", npk.QuantityImport)
	assert.ElementsMatch(t, []string{"100", "101", "102"}, npk.SourceNFEs)

	urea := result.Rows[1]
	assert.Equal(t, "PR-00551-6.000002", urea.MapaRegistration)
	assert.Equal(t, "3", urea.QuantityDomestic)
	assert.Equal(t, "0", urea.QuantityImport)
}

func TestProcessUnknownCompanyTaintsAllLines(t *testing.T) {
	db := setupDB(t)
	userID := seedCatalog(t, db)

	p, err := NewProcessor(db, userID)
	require.NoError(t, err)

	_, err = p.Process([]*nfe.Invoice{
		invoice("200", "Empresa Fantasma SA", "SP",
			item("ADUBO NPK 15-15-15", "KG", "100"),
			item("UREIA AGRICOLA", "KG", "200")),
	})
	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	require.Len(t, catErr.Entries, 2)
	for _, e := range catErr.Entries {
		assert.Equal(t, "company", e.ErrorType)
		assert.Equal(t, "Empresa Fantasma SA", e.CompanyName)
		assert.Equal(t, "200", e.NFENumber)
	}
	assert.Equal(t, "2 empresa(s) não cadastrada(s) no catálogo.", catErr.Error())
}

func TestProcessUnknownProduct(t *testing.T) {
	db := setupDB(t)
	userID := seedCatalog(t, db)

	p, err := NewProcessor(db, userID)
	require.NoError(t, err)

	_, err = p.Process([]*nfe.Invoice{
		invoice("300", "Fertilizantes Parana LTDA", "PR",
			item("CALCARIO DOLOMITICO", "KG", "5000"),
			item("ADUBO NPK 15-15-15", "KG", "100")),
	})
	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	require.Len(t, catErr.Entries, 1)
	assert.Equal(t, "product", catErr.Entries[0].ErrorType)
	assert.Equal(t, "CALCARIO DOLOMITICO", catErr.Entries[0].ProductName)
	assert.Equal(t, "1 produto(s) não cadastrado(s) no catálogo.", catErr.Error())
}

func TestProcessMixedCatalogErrorMessage(t *testing.T) {
	db := setupDB(t)
	userID := seedCatalog(t, db)

	p, err := NewProcessor(db, userID)
	require.NoError(t, err)

	_, err = p.Process([]*nfe.Invoice{
		invoice("400", "Empresa Fantasma SA", "SP", item("X", "KG", "1")),
		invoice("401", "Fertilizantes Parana LTDA", "PR", item("CALCARIO", "KG", "1")),
	})
	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t,
		"Encontrados erros: 1 empresa(s) não cadastrada(s), 1 produto(s) não cadastrado(s) no catálogo.",
		catErr.Error())
}

func TestToTonnes(t *testing.T) {
	cases := []struct {
		qty  string
		unit string
		want string
	}{
		{"1000", "KG", "1"},
		{"2500", "kg", "2.5"},
		{"3", "TON", "3"},
		{"3", "Tonelada", "3"},
		{"1,5", "T", "1.5"},
		{"500", "SC", "0.5"}, // unknown unit falls back to KG
		{"500", "", "0.5"},
	}
	for _, c := range cases {
		qty := decimal.RequireFromString(strings.ReplaceAll(c.qty, ",", "."))
		got := ToTonnes(qty, c.unit)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)),
			"%s %s: got %s want %s", c.qty, c.unit, got, c.want)
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := map[string]string{
		"0":       "0",
		"1":       "1",
		"2.50":    "2.5",
		"2.505":   "2.51",
		"0.001":   "0",
		"1234.00": "1234",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatQuantity(decimal.RequireFromString(in)), in)
	}
}
