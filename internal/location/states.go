package location

// brazilianStates maps full state names to their two-letter codes.
var brazilianStates = map[string]string{
	"Acre":                "AC",
	"Alagoas":             "AL",
	"Amapá":               "AP",
	"Amazonas":            "AM",
	"Bahia":               "BA",
	"Ceará":               "CE",
	"Distrito Federal":    "DF",
	"Espírito Santo":      "ES",
	"Goiás":               "GO",
	"Maranhão":            "MA",
	"Mato Grosso":         "MT",
	"Mato Grosso do Sul":  "MS",
	"Minas Gerais":        "MG",
	"Pará":                "PA",
	"Paraíba":             "PB",
	"Paraná":              "PR",
	"Pernambuco":          "PE",
	"Piauí":               "PI",
	"Rio de Janeiro":      "RJ",
	"Rio Grande do Norte": "RN",
	"Rio Grande do Sul":   "RS",
	"Rondônia":            "RO",
	"Roraima":             "RR",
	"Santa Catarina":      "SC",
	"São Paulo":           "SP",
	"Sergipe":             "SE",
	"Tocantins":           "TO",
}

// StateAbbreviation returns the two-letter code for a Brazilian state name.
// Unknown names are returned as-is so unexpected geocoder output still
// reaches the address form.
func StateAbbreviation(state string) string {
	if abbr, ok := brazilianStates[state]; ok {
		return abbr
	}
	return state
}
