package config

import "github.com/metrowatch/sentiment-etl/internal/domain"

// DefaultTables returns the built-in Lagos classification tables and
// per-source calibrations.
func DefaultTables() Tables {
	return Tables{
		Calibrations: defaultCalibrations(),
		Areas:        lagosAreas(),
		Categories:   categoryKeywords(),
		Dialects:     dialectKeywords(),
		Relevance:    relevanceKeywords(),
		Primary:      domain.LanguageEnglish,
	}
}

// Per-source sentiment calibrations. Social feeds skew negative and are
// dampened; official channels under-report negativity and are amplified.
func defaultCalibrations() map[string]domain.Calibration {
	return map[string]domain.Calibration{
		domain.SourceTwitter:    {AdjustmentFactor: 0.7, BaselineNegativity: -0.35},
		domain.SourceFacebook:   {AdjustmentFactor: 0.8, BaselineNegativity: -0.25},
		domain.SourceNews:       {AdjustmentFactor: 0.6, BaselineNegativity: -0.45},
		domain.SourceGovernment: {AdjustmentFactor: 1.2, BaselineNegativity: -0.05},
		domain.SourceCommunity:  {AdjustmentFactor: 1.0, BaselineNegativity: -0.15},
	}
}

func lagosAreas() domain.AreaTable {
	return domain.AreaTable{
		Names: []string{
			"Victoria Island", "Ikoyi", "Lagos Island", "Ikeja", "Surulere",
			"Yaba", "Apapa", "Mushin", "Alimosho", "Agege", "Eti-Osa",
			"Kosofe", "Shomolu", "Oshodi-Isolo", "Ifako-Ijaiye", "Somolu",
			"Lagos Mainland", "Amuwo-Odofin", "Ojo", "Badagry",
		},
		Aliases: []domain.AreaAlias{
			{Area: "Victoria Island", Alias: "vi"},
			{Area: "Victoria Island", Alias: "v.i"},
			{Area: "Victoria Island", Alias: "vic island"},
			{Area: "Victoria Island", Alias: "victoria isl"},
			{Area: "Ikoyi", Alias: "ikoyi island"},
			{Area: "Lagos Island", Alias: "lagos isl"},
			{Area: "Lagos Island", Alias: "isale eko"},
			{Area: "Ikeja", Alias: "ikeja gra"},
			{Area: "Ikeja", Alias: "ikeja government"},
			{Area: "Surulere", Alias: "suru lere"},
			{Area: "Surulere", Alias: "surulere lagos"},
			{Area: "Yaba", Alias: "yaba college"},
			{Area: "Apapa", Alias: "apapa port"},
			{Area: "Mushin", Alias: "mushin lagos"},
			{Area: "Alimosho", Alias: "alimosho lga"},
			{Area: "Agege", Alias: "agege motor road"},
			{Area: "Eti-Osa", Alias: "eti osa"},
			{Area: "Kosofe", Alias: "kosofe lga"},
			{Area: "Shomolu", Alias: "shomolu lga"},
			{Area: "Oshodi-Isolo", Alias: "oshodi"},
			{Area: "Oshodi-Isolo", Alias: "isolo"},
			{Area: "Ifako-Ijaiye", Alias: "ifako"},
			{Area: "Ifako-Ijaiye", Alias: "ijaiye"},
			{Area: "Amuwo-Odofin", Alias: "amuwo odofin"},
			{Area: "Amuwo-Odofin", Alias: "festac"},
			{Area: "Ojo", Alias: "ojo cantonment"},
			{Area: "Badagry", Alias: "badagry expressway"},
		},
	}
}

// Category keyword sets in priority order. The first set with a hit wins,
// so traffic terms shadow the crime and emergency lists.
func categoryKeywords() []domain.KeywordSet {
	return []domain.KeywordSet{
		{Tag: domain.CategoryTraffic, Words: []string{
			"traffic", "road", "highway", "bridge", "transport", "bus",
			"taxi", "okada", "keke", "danfo", "jam", "congestion", "accident",
		}},
		{Tag: domain.CategoryCrime, Words: []string{
			"crime", "theft", "robbery", "burglary", "steal", "pickpocket",
			"fraud", "scam", "kidnap", "violence", "fight", "attack",
		}},
		{Tag: domain.CategoryLawEnforcement, Words: []string{
			"police", "officer", "arrest", "station", "patrol", "checkpoint",
			"law", "enforcement", "authority", "government",
		}},
		{Tag: domain.CategoryEmergency, Words: []string{
			"emergency", "fire", "medical", "ambulance", "hospital",
			"accident", "disaster", "flood", "rescue",
		}},
	}
}

func dialectKeywords() []domain.KeywordSet {
	return []domain.KeywordSet{
		{Tag: domain.LanguagePidgin, Words: []string{
			"wahala", "gbege", "kasala", "palaba", "dey", "wetin", "abi", "shey",
			"abeg", "comot", "naija", "naira", "oga", "madam", "pikin", "japa",
			"sabi", "waka", "gist", "hammer", "scatter",
		}},
		{Tag: domain.LanguageYoruba, Words: []string{
			"omo", "oko", "obinrin", "awa", "eyin", "won", "mi", "tire", "wa",
			"ile", "oja", "eko", "agba", "baba", "mama", "iya",
		}},
	}
}

// Relevance keyword groups. A report qualifies as security relevant when
// at least two hits land across all groups combined.
func relevanceKeywords() []domain.KeywordSet {
	return []domain.KeywordSet{
		{Tag: "direct", Words: []string{
			"security", "crime", "theft", "robbery", "burglary", "violence",
			"police", "safety", "dangerous", "threat", "attack", "incident",
			"emergency", "accident", "fire", "medical", "ambulance",
		}},
		{Tag: "traffic", Words: []string{
			"traffic", "road", "highway", "bridge", "transport", "bus",
			"taxi", "okada", "keke", "danfo", "jam", "congestion",
		}},
		{Tag: "locations", Words: []string{
			"street", "road", "avenue", "bridge", "market", "park",
			"station", "airport", "port", "hospital", "school",
		}},
		{Tag: "nigerian", Words: []string{
			"naija", "lagos", "wahala", "gbege", "kasala", "palaba",
		}},
	}
}
