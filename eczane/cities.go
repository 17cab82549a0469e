package eczane

// Cities returns the commonly queried provinces.
func Cities() []string {
	return []string{
		"İstanbul", "Ankara", "İzmir", "Bursa", "Antalya",
		"Adana", "Konya", "Gaziantep", "Şanlıurfa", "Kocaeli",
		"Mersin", "Diyarbakır", "Hatay", "Manisa", "Kayseri",
		"Samsun", "Balıkesir", "Kahramanmaraş", "Van", "Aydın",
		"Denizli", "Sakarya", "Tekirdağ", "Muğla", "Eskişehir",
	}
}
