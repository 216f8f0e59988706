package refdata

// builtinCountries maps the first identifier character to the build country
// class. First-character granularity is deliberately coarse; precise
// assignment would need the full two-character region table.
var builtinCountries = map[byte]string{
	'1': "United States",
	'2': "Canada",
	'3': "Mexico",
	'4': "United States",
	'5': "United States",
	'6': "Australia",
	'7': "New Zealand",
	'8': "Argentina",
	'9': "Brazil",
	'J': "Japan",
	'K': "South Korea",
	'L': "China",
	'M': "India",
	'N': "Turkey",
	'R': "Taiwan",
	'S': "United Kingdom",
	'T': "Switzerland",
	'U': "Denmark",
	'V': "France",
	'W': "Germany",
	'X': "Russia",
	'Y': "Sweden",
	'Z': "Italy",
}

// builtinWMIs maps exact three-character World Manufacturer Identifiers to
// manufacturer names.
var builtinWMIs = map[string]string{
	"1C3": "Chrysler",
	"1C4": "Jeep",
	"1FA": "Ford",
	"1FT": "Ford",
	"1G1": "Chevrolet",
	"1GC": "Chevrolet",
	"1HG": "Honda",
	"1J4": "Jeep",
	"1N4": "Nissan",
	"1VW": "Volkswagen",
	"1YV": "Mazda",
	"2HG": "Honda",
	"2T1": "Toyota",
	"3FA": "Ford",
	"3N1": "Nissan",
	"3VW": "Volkswagen",
	"4S3": "Subaru",
	"4T1": "Toyota",
	"5FN": "Honda",
	"5NP": "Hyundai",
	"5TD": "Toyota",
	"5YJ": "Tesla",
	"8AG": "Chevrolet",
	"93H": "Honda",
	"9BW": "Volkswagen",
	"JA3": "Mitsubishi",
	"JF1": "Subaru",
	"JHM": "Honda",
	"JM1": "Mazda",
	"JN1": "Nissan",
	"JS1": "Suzuki",
	"JT2": "Toyota",
	"JTD": "Toyota",
	"JTH": "Lexus",
	"KMH": "Hyundai",
	"KNA": "Kia",
	"LFV": "Volkswagen",
	"MA3": "Suzuki",
	"NMT": "Toyota",
	"SAJ": "Jaguar",
	"SAL": "Land Rover",
	"SB1": "Toyota",
	"TRU": "Audi",
	"VF1": "Renault",
	"VF3": "Peugeot",
	"WAU": "Audi",
	"WBA": "BMW",
	"WDB": "Mercedes-Benz",
	"WVW": "Volkswagen",
	"YV1": "Volvo",
	"ZFA": "Fiat",
	"ZFF": "Ferrari",
}

// yearLetterOffsets maps VIN year-code letters to their offset within a
// 30-year cycle (A=0 ... Y=20, skipping I, O, Q, U, Z).
var yearLetterOffsets = map[byte]int{
	'A': 0, 'B': 1, 'C': 2, 'D': 3, 'E': 4, 'F': 5, 'G': 6, 'H': 7,
	'J': 8, 'K': 9, 'L': 10, 'M': 11, 'N': 12, 'P': 13, 'R': 14,
	'S': 15, 'T': 16, 'V': 17, 'W': 18, 'X': 19, 'Y': 20,
}

// builtinJDMModels is the Japanese model-code database, keyed by chassis
// model code (or code-family prefix).
var builtinJDMModels = map[string]JDMModel{
	"AE86":   {Make: "Toyota", Model: "Corolla Levin"},
	"AE92":   {Make: "Toyota", Model: "Corolla"},
	"BNR32":  {Make: "Nissan", Model: "Skyline GT-R"},
	"BNR34":  {Make: "Nissan", Model: "Skyline GT-R"},
	"CT9A":   {Make: "Mitsubishi", Model: "Lancer Evolution"},
	"DC2":    {Make: "Honda", Model: "Integra Type R"},
	"EK9":    {Make: "Honda", Model: "Civic Type R"},
	"EP82":   {Make: "Toyota", Model: "Starlet"},
	"FD3S":   {Make: "Mazda", Model: "RX-7"},
	"GC8":    {Make: "Subaru", Model: "Impreza WRX"},
	"GDB":    {Make: "Subaru", Model: "Impreza WRX STI"},
	"JZA80":  {Make: "Toyota", Model: "Supra"},
	"JZX100": {Make: "Toyota", Model: "Chaser"},
	"NZE121": {Make: "Toyota", Model: "Corolla"},
	"S13":    {Make: "Nissan", Model: "Silvia"},
	"S14":    {Make: "Nissan", Model: "Silvia"},
	"S15":    {Make: "Nissan", Model: "Silvia"},
	"SW20":   {Make: "Toyota", Model: "MR2"},
	"SXE10":  {Make: "Toyota", Model: "Altezza"},
	"ZN6":    {Make: "Toyota", Model: "86"},
}
