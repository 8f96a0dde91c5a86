package catalog

// DefaultYears is the span the portal publishes.
var DefaultYears = YearRange{From: 2000, To: 2022}

// DefaultCountries lists the display names the portal accepts in name[].
var DefaultCountries = []string{
	"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi", "Cameroon", "Cape Verde",
	"Central African Republic", "Chad", "Comoros", "Congo Democratic Republic", "Congo Republic",
	"Cote d'Ivoire", "Djibouti", "Egypt", "Equatorial Guinea", "Eritrea", "Eswatini", "Ethiopia",
	"Gabon", "Gambia", "Ghana", "Guinea", "Guinea Bissau", "Kenya", "Lesotho", "Liberia", "Libya",
	"Madagascar", "Malawi", "Mali", "Mauritania", "Mauritius", "Morocco", "Mozambique", "Namibia",
	"Niger", "Nigeria", "Rwanda", "Sao Tome and Principe", "Senegal", "Seychelles", "Sierra Leone",
	"Somalia", "South Africa", "South Sudan", "Sudan", "Tanzania", "Togo", "Tunisia", "Uganda",
	"Zambia", "Zimbabwe",
}

// Default returns the built-in electricity catalog. The returned value is a
// fresh copy and may be modified by the caller.
func Default() Catalog {
	return Catalog{
		Countries: append([]string(nil), DefaultCountries...),
		Years:     DefaultYears,
		Sectors: []Sector{
			{
				Name: "Electricity",
				SubSectors: []SubSector{
					{
						Name: "Access",
						Indicators: []string{
							"Population access to electricity-National (% of population)",
							"Population access to electricity-Rural (% of population)",
							"Population access to electricity-Urban (% of population)",
							"Population with access to electricity-National (millions of people)",
							"Population with access to electricity-Rural (millions of people)",
							"Population with access to electricity-Urban (millions of people)",
							"Population without access to electricity-National (millions of people)",
							"Population without access to electricity-Rural (millions of people)",
							"Population without access to electricity-Urban (millions of people)",
						},
					},
					{
						Name: "Supply",
						Indicators: []string{
							"Electricity export (GWh)",
							"Electricity final consumption (GWh)",
							"Electricity final consumption per capita (KWh)",
							"Electricity generated from biofuels and waste (GWh)",
							"Electricity generated from fossil fuels (GWh)",
							"Electricity generated from geothermal energy (GWh)",
							"Electricity generated from hydropower (GWh)",
							"Electricity generated from nuclear power (GWh)",
							"Electricity generated from renewable sources (GWh)",
							"Electricity generated from solar, wind, tide, wave and other sources (GWh)",
							"Electricity generation per capita (KWh)",
							"Electricity generation, Total (GWh)",
							"Electricity import (GWh)",
							"Electricity: Net imports ( GWh )",
						},
					},
					{
						Name: "Technical",
						Indicators: []string{
							"Electricity installed capacity in Bioenergy (MW)",
							"Electricity installed capacity in Fossil fuels (MW)",
							"Electricity installed capacity in Geothermal (MW)",
							"Electricity installed capacity in Hydropower (MW)",
							"Electricity installed capacity in Non-renewable energy (MW)",
							"Electricity installed capacity in Nuclear (MW)",
							"Electricity installed capacity in Solar (MW)",
							"Electricity installed capacity in Total renewable energy (MW)",
							"Electricity installed capacity in Wind (MW)",
							"Electricity installed capacity in other Non-renewable energy (MW)",
							"Electricity installed capacity, Total (MW)",
						},
					},
				},
			},
		},
	}
}
