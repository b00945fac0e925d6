package workspace

import "time"

// Run records one pipeline execution and the files it produced.
type Run struct {
	ID             string    `json:"id"`
	Input          string    `json:"input"`
	Name           string    `json:"name"`
	RowsRaw        int       `json:"rows_raw"`
	RowsFiltered   int       `json:"rows_filtered"`
	ColumnsDropped []string  `json:"columns_dropped,omitempty"`
	Anomalies      int       `json:"anomalies"`
	OutlierPasses  int       `json:"outlier_passes"`
	ReportPath     string    `json:"report_path,omitempty"`
	CleanedPath    string    `json:"cleaned_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
