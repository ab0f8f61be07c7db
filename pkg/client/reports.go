package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ReportRow is one aggregated line of a quarterly report, quantities already
// converted to tonnes and formatted by the backend.
type ReportRow struct {
	MapaRegistration string `json:"registro_mapa"`
	ProductName      string `json:"produto"`
	ProductReference string `json:"referencia,omitempty"`
	Unit             string `json:"unidade"`
	QuantityImport   string `json:"quantidade_importada"`
	QuantityDomestic string `json:"quantidade_nacional"`
}

// ReportResult is a successful generation response.
type ReportResult struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Period    string      `json:"period"`
	TotalNFEs int         `json:"total_nfes"`
	Rows      []ReportRow `json:"rows"`
}

// ReportRecord is one row of the saved-report history.
type ReportRecord struct {
	ID           uint   `json:"id"`
	ReportPeriod string `json:"report_period"`
	GeneratedAt  string `json:"generated_at"`
	TotalNFEs    int    `json:"total_nfes"`
}

var errEmptyPeriod = &ReportError{
	Category: CategoryGeneric,
	Message:  "Por favor, selecione um período.",
}

// GenerateReport builds the report for one quarter. An empty period fails
// locally before any request is made. A second call while one is pending
// returns a busy error; Generate and Download are tracked independently so
// a download can start right after a generation.
func (c *Client) GenerateReport(ctx context.Context, period string) (*ReportResult, error) {
	if period == "" {
		return nil, errEmptyPeriod
	}
	if !c.generateBusy.CompareAndSwap(false, true) {
		return nil, &ReportError{Category: CategoryGeneric, Message: "Geração de relatório já em andamento."}
	}
	defer c.generateBusy.Store(false)

	var out ReportResult
	in := map[string]string{"period": period}
	if err := c.postJSON(ctx, "/api/user/generate-report", in, &out); err != nil {
		return nil, ClassifyReportError(err)
	}
	return &out, nil
}

// DownloadReport streams the PDF for one quarter into w. Errors are
// classified with the same rules as GenerateReport.
func (c *Client) DownloadReport(ctx context.Context, period string, w io.Writer) error {
	if period == "" {
		return errEmptyPeriod
	}
	if !c.downloadBusy.CompareAndSwap(false, true) {
		return &ReportError{Category: CategoryGeneric, Message: "Download de relatório já em andamento."}
	}
	defer c.downloadBusy.Store(false)

	path := fmt.Sprintf("/api/user/reports/%s/download", url.PathEscape(period))
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return ClassifyReportError(err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &ReportError{Category: CategoryTransport, Message: "Erro ao salvar o arquivo: " + err.Error()}
	}
	return nil
}

// ListReports returns the saved-report history.
func (c *Client) ListReports(ctx context.Context) ([]ReportRecord, error) {
	var out []ReportRecord
	if err := c.getJSON(ctx, "/api/user/reports", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteReport removes one saved report.
func (c *Client) DeleteReport(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/user/reports/%d", id))
}
