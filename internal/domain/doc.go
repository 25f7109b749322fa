// Package domain models dengue case exports from the Brazilian notifiable
// diseases information system (SINAN), as published through DATASUS TabNet.
//
// # Data Source
//
// Each export is a semicolon-delimited CSV produced by a TabNet query. The
// dashboard consumes six of them: cases by state and year, cases by
// municipality and year, cases by year broken down by sex, race and schooling,
// and cases by age band and notification month.
//
// # Export Conventions
//
// Preamble:
//
//	A TabNet export starts with a few free-text lines (query title, period,
//	filters) before the table. The table header is the first line that starts
//	with a quoted column name followed by the delimiter: `"UF de residência";"2014";...`.
//	See [ExtractTable].
//
// Footer:
//
//	After the data rows TabNet appends annotations ("Fonte: ...", "Notas:",
//	followed by free text). Everything from the first annotation row on is
//	dropped.
//
// Numbers:
//
//	pt-BR formatting: "." groups thousands and "," separates decimals, so
//	"1.234,5" is 1234.5. A lone "-" means no notification for that cell and is
//	kept as a missing value, never as zero. See [ParseNumber].
//
// Row keys:
//
//	"<code> <name>" where code is the IBGE identifier: two digits for states
//	("51 Mato Grosso"), six digits for municipalities ("510340 CUIABA").
//	Sentinel rows such as "MUNICIPIO IGNORADO - MT" carry no code. GeoJSON
//	sources use seven-digit municipality codes (six digits plus a check digit).
//	See [ParseEntityKey].
//
// Shapes:
//
//	Wide tables have one row per entity and one column per year, plus a
//	"Total" row holding the national aggregate ([WideIndex]). Long tables have
//	one row per year and one column per category ([LongSeries]); the age band
//	table has one row per band and one column per month ([Seasonality]).
//
// # Color Scale
//
// Choropleth fills use quantile breaks (equal population per bin, not equal
// width) and a linear blend between two brand colors. Missing values get a
// translucent neutral fill. See [QuantileBreaks] and [ColorFor].
package domain
