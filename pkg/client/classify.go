package client

import "strings"

// Category buckets backend report errors into the few cases the UI can act on.
type Category string

const (
	CategoryMissingProduct Category = "MISSING_PRODUCT"
	CategoryMissingCompany Category = "MISSING_COMPANY"
	CategoryNoData         Category = "NO_DATA"
	CategoryGeneric        Category = "GENERIC"
	CategoryTransport      Category = "TRANSPORT"
)

// ReportError is a classified report-generation or download failure.
// Guidance is fixed per category and safe to show as-is.
type ReportError struct {
	Category Category
	Message  string
	Guidance string
	Entries  []UnregisteredEntry
}

func (e *ReportError) Error() string { return e.Message }

const (
	guidanceMissingProduct = "Produto não cadastrado no catálogo.\n" +
		"Acesse a tela \"Meus Produtos\", cadastre os produtos listados nas notas fiscais\n" +
		"e gere o relatório novamente."
	guidanceMissingCompany = "Empresa não cadastrada no catálogo.\n" +
		"Acesse a tela \"Minhas Empresas\", cadastre as empresas emitentes das notas fiscais\n" +
		"e gere o relatório novamente."
	guidanceNoData = "Nenhum dado encontrado para o período selecionado.\n" +
		"Faça o upload das notas fiscais do período antes de gerar o relatório."
)

// ClassifyReportError turns any error from a report call into a *ReportError.
// Generate and Download share this single classifier so both entry points
// always agree on the category for the same backend detail string.
func ClassifyReportError(err error) *ReportError {
	apiErr, ok := err.(*APIError)
	if !ok {
		return &ReportError{
			Category: CategoryTransport,
			Message:  "Erro de conexão com o servidor: " + err.Error(),
		}
	}

	detail := apiErr.DetailText()
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "produto") && strings.Contains(lower, "não cadastrado"):
		return &ReportError{
			Category: CategoryMissingProduct,
			Message:  detail,
			Guidance: guidanceMissingProduct,
			Entries:  apiErr.UnregisteredEntries,
		}
	case strings.Contains(lower, "empresa") && strings.Contains(lower, "não cadastrada"):
		return &ReportError{
			Category: CategoryMissingCompany,
			Message:  detail,
			Guidance: guidanceMissingCompany,
			Entries:  apiErr.UnregisteredEntries,
		}
	case strings.Contains(lower, "nenhum dado encontrado"):
		return &ReportError{
			Category: CategoryNoData,
			Message:  detail,
			Guidance: guidanceNoData,
		}
	}
	return &ReportError{
		Category: CategoryGeneric,
		Message:  detail,
		Entries:  apiErr.UnregisteredEntries,
	}
}
