package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportServer answers both the generate and download endpoints with the
// same error envelope, so classification can be compared across them.
func reportServer(detail string, entries []UnregisteredEntry) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"detail": detail}
		if entries != nil {
			body["unregistered_entries"] = entries
		}
		writeJSON(w, http.StatusBadRequest, body)
	}))
}

func classifyBoth(t *testing.T, srv *httptest.Server) (*ReportError, *ReportError) {
	t.Helper()
	c := New(srv.URL)

	_, genErr := c.GenerateReport(context.Background(), "Q1-2025")
	require.Error(t, genErr)
	gen, ok := genErr.(*ReportError)
	require.True(t, ok)

	dlErr := c.DownloadReport(context.Background(), "Q1-2025", io.Discard)
	require.Error(t, dlErr)
	dl, ok := dlErr.(*ReportError)
	require.True(t, ok)
	return gen, dl
}

func TestGenerateAndDownloadClassifyIdentically(t *testing.T) {
	cases := []struct {
		detail string
		want   Category
	}{
		{"Encontrados erros: 1 empresa(s) não cadastrada(s), 2 produto(s) não cadastrado(s) no catálogo.", CategoryMissingProduct},
		{"2 produto(s) não cadastrado(s) no catálogo.", CategoryMissingProduct},
		{"1 empresa(s) não cadastrada(s) no catálogo.", CategoryMissingCompany},
		{"Nenhum dado encontrado para o período Q1-2025. Faça o upload das notas fiscais primeiro.", CategoryNoData},
		{"Erro interno qualquer", CategoryGeneric},
	}
	for _, cse := range cases {
		srv := reportServer(cse.detail, nil)
		gen, dl := classifyBoth(t, srv)
		srv.Close()

		assert.Equal(t, cse.want, gen.Category, cse.detail)
		assert.Equal(t, gen.Category, dl.Category, cse.detail)
		assert.Equal(t, gen.Guidance, dl.Guidance, cse.detail)
		if cse.want != CategoryGeneric {
			assert.NotEmpty(t, gen.Guidance, cse.detail)
		}
		assert.Equal(t, cse.detail, gen.Message)
	}
}

func TestClassificationIsCaseInsensitive(t *testing.T) {
	srv := reportServer("PRODUTO XYZ NÃO CADASTRADO", nil)
	defer srv.Close()
	gen, dl := classifyBoth(t, srv)
	assert.Equal(t, CategoryMissingProduct, gen.Category)
	assert.Equal(t, CategoryMissingProduct, dl.Category)
}

func TestClassifyCarriesUnregisteredEntries(t *testing.T) {
	entries := []UnregisteredEntry{{
		ErrorType:   "product",
		CompanyName: "Fertilizantes Parana LTDA",
		ProductName: "CALCARIO",
		NFENumber:   "300",
		Quantity:    "2500.0000",
		Unit:        "KG",
	}}
	srv := reportServer("1 produto(s) não cadastrado(s) no catálogo.", entries)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GenerateReport(context.Background(), "Q1-2025")
	require.Error(t, err)
	re, ok := err.(*ReportError)
	require.True(t, ok)
	require.Len(t, re.Entries, 1)
	assert.Equal(t, "CALCARIO", re.Entries[0].ProductName)
	assert.Equal(t, "300", re.Entries[0].NFENumber)
	assert.Equal(t, "2500.0000", re.Entries[0].Quantity)
	assert.Equal(t, "KG", re.Entries[0].Unit)
}

func TestClassifyTransportError(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.GenerateReport(context.Background(), "Q1-2025")
	require.Error(t, err)
	re, ok := err.(*ReportError)
	require.True(t, ok)
	assert.Equal(t, CategoryTransport, re.Category)
	assert.Contains(t, re.Message, "Erro de conexão")
}

func TestEmptyPeriodShortCircuitsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GenerateReport(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selecione um período")

	err = c.DownloadReport(context.Background(), "", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selecione um período")

	assert.Zero(t, hits.Load())
}

func TestGenerateSuccessReturnsRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/generate-report", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"message":    "Relatório processado com sucesso",
			"period":     "Q1-2025",
			"total_nfes": 2,
			"rows": []map[string]string{
				{"mapa_registration": "PR-00551-6.000001", "quantity_domestic": "2.5"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.GenerateReport(context.Background(), "Q1-2025")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalNFEs)
	require.Len(t, result.Rows, 1)
}

func TestDownloadStreamsPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7 conteudo")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/reports/Q1-2025/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}))
	defer srv.Close()

	c := New(srv.URL)
	var buf bytes.Buffer
	require.NoError(t, c.DownloadReport(context.Background(), "Q1-2025", &buf))
	assert.Equal(t, pdf, buf.Bytes())
}

func TestGenerateBusyFlagIsIndependentFromDownload(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	pdf := []byte("%PDF-1.7")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user/generate-report" {
			close(started)
			<-release
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		_, _ = w.Write(pdf)
	}))
	defer srv.Close()

	c := New(srv.URL)
	done := make(chan struct{})
	go func() {
		_, _ = c.GenerateReport(context.Background(), "Q1-2025")
		close(done)
	}()
	<-started

	// a second generate is refused while the first is in flight
	_, err := c.GenerateReport(context.Background(), "Q1-2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "em andamento")

	// but a download may proceed
	var buf bytes.Buffer
	require.NoError(t, c.DownloadReport(context.Background(), "Q1-2025", &buf))

	close(release)
	<-done
}
