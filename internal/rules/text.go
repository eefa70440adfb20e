package rules

import "visaverse-backend/internal/domain"

type text struct {
	risk       string
	why        string
	mitigation []string
}

var findings = map[domain.Language]map[string]text{
	domain.LanguageEN: {
		"tight_departure": {
			risk: "Departure is less than 30 days away",
			why:  "Visa and logistics processing may exceed the available time window.",
			mitigation: []string{
				"Expedite document collection and book earliest available appointment.",
				"Consider rescheduling travel to allow buffer time.",
			},
		},
		"passport_expiry": {
			risk: "Passport validity is under 6 months after planned departure",
			why:  "Many destinations require passports valid 6+ months beyond travel dates.",
			mitigation: []string{
				"Renew passport before submitting visa application if feasible.",
				"Check destination rules for minimum validity and plan renewal appointment.",
			},
		},
		"funds_low": {
			risk: "Proof of funds appears low for study plans",
			why:  "Insufficient funds commonly lead to study visa refusals.",
			mitigation: []string{
				"Gather bank statements or sponsorship letters covering tuition and living costs.",
				"Clarify sponsor relationship and include notarized affidavits where applicable.",
			},
		},
	},
	domain.LanguageFR: {
		"tight_departure": {
			risk: "Le depart est dans moins de 30 jours",
			why:  "Le traitement du visa et la logistique peuvent depasser le delai disponible.",
			mitigation: []string{
				"Accelerez la collecte des documents et reservez le premier rendez-vous disponible.",
				"Envisagez de decaler le voyage pour garder une marge.",
			},
		},
		"passport_expiry": {
			risk: "Le passeport expire moins de 6 mois apres le depart prevu",
			why:  "De nombreuses destinations exigent un passeport valide 6 mois au-dela du sejour.",
			mitigation: []string{
				"Renouvelez le passeport avant de deposer la demande si possible.",
				"Verifiez la validite minimale exigee et planifiez le rendez-vous de renouvellement.",
			},
		},
		"funds_low": {
			risk: "Les justificatifs de ressources semblent faibles pour des etudes",
			why:  "Des ressources insuffisantes entrainent souvent un refus de visa etudiant.",
			mitigation: []string{
				"Rassemblez des releves bancaires ou des lettres de garant couvrant frais de scolarite et de vie.",
				"Precisez le lien avec le garant et joignez des attestations notariees si necessaire.",
			},
		},
	},
}

// textFor falls back to English for unknown languages.
func textFor(id string, lang domain.Language) text {
	if byID, ok := findings[lang]; ok {
		if t, ok := byID[id]; ok {
			return t
		}
	}
	return findings[domain.LanguageEN][id]
}
