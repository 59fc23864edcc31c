package csvinfer

import (
	"path/filepath"
	"strings"
)

// FileType represents supported tabular formats
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type (first sheet only)
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// String returns the format name
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// Extension returns the file extension for the FileType
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeCSV:
		return extCSV
	case FileTypeTSV:
		return extTSV
	case FileTypeXLSX:
		return extXLSX
	case FileTypeParquet:
		return extParquet
	default:
		return ""
	}
}

// isDelimited reports whether the format is line oriented text
func (ft FileType) isDelimited() bool {
	return ft == FileTypeCSV || ft == FileTypeTSV
}

// delimiter returns the field separator of a delimited format
func (ft FileType) delimiter() rune {
	if ft == FileTypeTSV {
		return tsvDelimiter
	}
	return csvDelimiter
}

// ParseFileType converts a format name ("csv", "tsv", "xlsx", "parquet") to a FileType
func ParseFileType(name string) FileType {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "csv":
		return FileTypeCSV
	case "tsv":
		return FileTypeTSV
	case "xlsx":
		return FileTypeXLSX
	case "parquet":
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// DetectFileType returns the format and compression of a file from its name,
// e.g. "orders.tsv.zst" is (FileTypeTSV, CompressionZSTD)
func DetectFileType(path string) (FileType, CompressionType) {
	compression := DetectCompressionType(path)
	base := strings.ToLower(removeCompressionExtension(path))

	switch filepath.Ext(base) {
	case extCSV:
		return FileTypeCSV, compression
	case extTSV:
		return FileTypeTSV, compression
	case extXLSX:
		return FileTypeXLSX, compression
	case extParquet:
		return FileTypeParquet, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(path string) bool {
	ft, _ := DetectFileType(path)
	return ft != FileTypeUnsupported
}

// supportedFileExtPatterns returns every accepted extension including compressed variants
func supportedFileExtPatterns() []string {
	baseExts := []string{extCSV, extTSV, extXLSX, extParquet}
	compressionExts := []string{"", extGZ, extBZ2, extXZ, extZSTD}

	patterns := make([]string, 0, len(baseExts)*len(compressionExts))
	for _, baseExt := range baseExts {
		for _, compExt := range compressionExts {
			patterns = append(patterns, baseExt+compExt)
		}
	}
	return patterns
}

// tableNameFromPath derives a bare table name: "dir/orders.csv.gz" becomes "orders"
func tableNameFromPath(path string) string {
	base := filepath.Base(removeCompressionExtension(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
