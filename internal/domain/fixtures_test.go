package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const statesCSV = "Ministério da Saúde/SVS - Sistema de Informação de Agravos de Notificação - Sinan Net\r\n" +
	"Casos prováveis por UF de residência e Ano notificação\r\n" +
	"Período:2013-2024\r\n" +
	"\r\n" +
	`"UF de residência";"2013";"2023";"2024"` + "\r\n" +
	`"11 Rondônia";"-";"100";"120"` + "\r\n" +
	`"35 São Paulo";"1.000";"1.000";"900"` + "\r\n" +
	`"51 Mato Grosso";"200";"250";"300"` + "\r\n" +
	`"52 Goiás";"40";"0";"80"` + "\r\n" +
	`"Total";"1.240";"1.350";"1.500"` + "\r\n" +
	`"Fonte: Ministério da Saúde/SVS - Sistema de Informação de Agravos de Notificação - Sinan Net"` + "\r\n" +
	`"Notas:"` + "\r\n" +
	`"Dados de 2024 sujeitos à revisão."` + "\r\n"

const municipalitiesCSV = "Casos prováveis por Município de residência e Ano notificação\n" +
	"\n" +
	`"Município de residência";"2023";"2024"` + "\n" +
	`"110001 ALTA FLORESTA D'OESTE";"10";"12"` + "\n" +
	`"110002 ARIQUEMES";"0";"5"` + "\n" +
	`"510340 CUIABÁ";"80";"100"` + "\n" +
	`"510760 RONDONÓPOLIS";"-";"40"` + "\n" +
	`"355030 SÃO PAULO";"500";"450"` + "\n" +
	`"MUNICIPIO IGNORADO - MT";"1";"2"` + "\n" +
	`"Total";"1.350";"1.500"` + "\n" +
	`"Fonte: Sinan Net"` + "\n"

const sexCSV = "Casos prováveis por Ano notificação e Sexo\n" +
	`"Ano notificação";"Ignorado";"Masculino";"Feminino";"Total"` + "\n" +
	`"2023";"1";"600";"749";"1.350"` + "\n" +
	`"2024";"-";"700";"800";"1.500"` + "\n"

const raceCSV = `"Ano notificação";"Total";"Branca";"Parda"` + "\n" +
	`"2023";"1.350";"500";"850"` + "\n" +
	`"2024";"1.500";"600";"900"` + "\n" +
	`"Total";"2.850";"1.100";"1.750"` + "\n"

const educationCSV = `"Ano notificação";"Analfabeto";"Ensino médio completo";"Total"` + "\n" +
	`"2024";"10";"300";"1.500"` + "\n"

const ageBandsCSV = `"Faixa Etária";"Jan";"Fev";"Mar";"Abr";"Mai";"Jun";"Jul";"Ago";"Set";"Out";"Nov";"Dez";"Total"` + "\n" +
	`"<1 Ano";"1";"2";"3";"4";"5";"6";"7";"8";"9";"10";"11";"12";"78"` + "\n" +
	`"1-4";"-";"-";"-";"-";"-";"-";"-";"-";"-";"-";"-";"-";"-"` + "\n" +
	`"20-39";"100";"200";"300";"250";"150";"50";"10";"5";"5";"10";"20";"40";"1.140"` + "\n"

func testExports() map[Kind]string {
	return map[Kind]string{
		KindStates:         statesCSV,
		KindMunicipalities: municipalitiesCSV,
		KindSex:            sexCSV,
		KindRace:           raceCSV,
		KindEducation:      educationCSV,
		KindAgeBands:       ageBandsCSV,
	}
}

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	d, err := BuildDataset(testExports(), DefaultColumns)
	require.NoError(t, err)
	return d
}

func testSelection(t *testing.T, d *Dataset) Selection {
	t.Helper()
	return DefaultSelection(d, 2014, 51)
}
