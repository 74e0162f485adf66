package domain

import "time"

// Provenance records what exactly was scanned.
type Provenance struct {
	DownloadTime   time.Time       `json:"download_time"             yaml:"download_time"`
	SourceArtifact *RemoteArtifact `json:"source_artifact,omitempty" yaml:"source_artifact,omitempty"`
	VcsInfo        *VcsInfo        `json:"vcs_info,omitempty"        yaml:"vcs_info,omitempty"`
}

// ScannerDetails names the scanner that produced a result.
type ScannerDetails struct {
	Name          string `json:"name"          yaml:"name"`
	Version       string `json:"version"       yaml:"version"`
	Configuration string `json:"configuration" yaml:"configuration"`
}

// ScanSummary holds the findings of a scan relevant to license evaluation.
type ScanSummary struct {
	StartTime       time.Time `json:"start_time"                 yaml:"start_time"`
	EndTime         time.Time `json:"end_time"                   yaml:"end_time"`
	FileCount       int       `json:"file_count"                 yaml:"file_count"`
	LicenseFindings []string  `json:"license_findings,omitempty" yaml:"license_findings,omitempty"`
	Issues          []Issue   `json:"issues,omitempty"           yaml:"issues,omitempty"`
}

// ScanResult is one stored scan of a package.
type ScanResult struct {
	Provenance Provenance     `json:"provenance" yaml:"provenance"`
	Scanner    ScannerDetails `json:"scanner"    yaml:"scanner"`
	Summary    ScanSummary    `json:"summary"    yaml:"summary"`
}

// ScanResultContainer holds all stored scan results of one package, in
// storage order.
type ScanResultContainer struct {
	ID      Identifier   `json:"id"      yaml:"id"`
	Results []ScanResult `json:"results" yaml:"results"`
}
