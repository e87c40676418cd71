package compact

import "math"

// Estimate - статистика сжатия. Размеры в байтах UTF-8.
type Estimate struct {
	OriginalSize     int     `json:"original_size" yaml:"original_size"`
	CompressedSize   int     `json:"compressed_size" yaml:"compressed_size"`
	Reduction        int     `json:"reduction" yaml:"reduction"`
	ReductionPercent float64 `json:"reduction_percent" yaml:"reduction_percent"`
}

// EstimateSize сравнивает размеры исходного и сжатого представления одного документа.
// Для пустого исходника процент равен 0. Процент округляется до двух знаков.
func EstimateSize(original, compressed string) Estimate {
	e := Estimate{
		OriginalSize:   len(original),
		CompressedSize: len(compressed),
	}
	e.Reduction = e.OriginalSize - e.CompressedSize
	if e.OriginalSize > 0 {
		e.ReductionPercent = math.Round(10000*float64(e.Reduction)/float64(e.OriginalSize)) / 100
	}
	return e
}
