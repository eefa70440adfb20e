package generator

import "visaverse-backend/internal/domain"

// Template is the fixed deterministic plan content for one language.
type Template struct {
	LanguageName string
	Summary      domain.Summary
	Timeline     []domain.TimelineItem
	Checklist    []domain.ChecklistItem
	Documents    []domain.DocumentCategory
	Risks        []domain.RiskItem
}

// FallbackSource is cited when retrieval finds nothing.
var FallbackSource = domain.SourceRef{Title: "VisaVerse global guidance", Ref: "kb/global_documents.md"}

const templateConfidence = 0.72

var templates = map[domain.Language]Template{
	domain.LanguageEN: {
		LanguageName: "English",
		Summary: domain.Summary{
			Title: "Visa preparation plan",
			KeyAdvice: []string{
				"Book visa appointment early and align documents with destination requirements.",
				"Show clear financial coverage and travel intent with supporting evidence.",
			},
			Assumptions: []string{
				"All data provided is accurate",
				"Applicant can gather core documents within two weeks",
			},
			Confidence: templateConfidence,
		},
		Timeline: []domain.TimelineItem{
			{When: "Week 1", Priority: domain.PriorityHigh, Actions: []string{
				"Collect passport, photos, and travel history",
				"Draft cover letter outlining itinerary and purpose",
			}},
			{When: "Week 2", Priority: domain.PriorityMedium, Actions: []string{
				"Book visa appointment and gather bank/sponsor statements",
				"Confirm accommodation and travel reservations",
			}},
			{When: "Week 3", Priority: domain.PriorityMedium, Actions: []string{
				"Submit application and track status",
				"Prepare for interview if required",
			}},
		},
		Checklist: []domain.ChecklistItem{
			{
				ID:    "cover_letter",
				Title: "Draft purpose cover letter",
				Steps: []string{
					"State origin and destination with dates",
					"Explain purpose and planned activities",
					"List financial support and accommodation",
				},
				Priority:      domain.PriorityMedium,
				EstimatedTime: "1 day",
				Dependencies:  []string{},
			},
			{
				ID:    "book_appointment",
				Title: "Book visa appointment",
				Steps: []string{
					"Create consulate account",
					"Select earliest available slot",
					"Upload mandatory documents",
				},
				Priority:      domain.PriorityHigh,
				EstimatedTime: "2 days",
				Dependencies:  []string{"cover_letter"},
			},
		},
		Documents: []domain.DocumentCategory{
			{Category: "Identity", Items: []domain.DocumentItem{
				{Name: "Passport", Why: "Proof of identity and travel document", Priority: domain.PriorityHigh, CommonMistakes: []string{"Expired pages", "Missing signatures"}},
				{Name: "Passport photos", Why: "Required for visa application", Priority: domain.PriorityMedium, CommonMistakes: []string{"Incorrect background", "Wrong dimensions"}},
			}},
			{Category: "Financial", Items: []domain.DocumentItem{
				{Name: "Bank statements or sponsor letter", Why: "Demonstrate sufficient funds", Priority: domain.PriorityHigh, CommonMistakes: []string{"Unstamped statements", "Missing sponsor ID"}},
			}},
		},
		Risks: []domain.RiskItem{
			{
				ID:           "appointment_slots",
				Risk:         "Appointment slots may be limited",
				WhyItMatters: "Delays can push travel dates",
				Mitigation:   []string{"Book immediately", "Monitor cancellations"},
				Severity:     domain.SeverityMedium,
			},
		},
	},
	domain.LanguageFR: {
		LanguageName: "French",
		Summary: domain.Summary{
			Title: "Plan de preparation du visa",
			KeyAdvice: []string{
				"Reservez le rendez-vous visa tot et alignez vos documents sur les exigences de la destination.",
				"Montrez une couverture financiere claire et l'intention du voyage avec des justificatifs.",
			},
			Assumptions: []string{
				"Toutes les informations fournies sont exactes",
				"Le demandeur peut rassembler les documents principaux en deux semaines",
			},
			Confidence: templateConfidence,
		},
		Timeline: []domain.TimelineItem{
			{When: "Semaine 1", Priority: domain.PriorityHigh, Actions: []string{
				"Rassembler passeport, photos et historique de voyage",
				"Rediger une lettre de motivation decrivant l'itineraire et l'objet du sejour",
			}},
			{When: "Semaine 2", Priority: domain.PriorityMedium, Actions: []string{
				"Reserver le rendez-vous visa et reunir les releves bancaires ou du garant",
				"Confirmer l'hebergement et les reservations de voyage",
			}},
			{When: "Semaine 3", Priority: domain.PriorityMedium, Actions: []string{
				"Deposer la demande et suivre son statut",
				"Preparer l'entretien si necessaire",
			}},
		},
		Checklist: []domain.ChecklistItem{
			{
				ID:    "cover_letter",
				Title: "Rediger la lettre de motivation",
				Steps: []string{
					"Indiquer l'origine, la destination et les dates",
					"Expliquer l'objet du sejour et les activites prevues",
					"Lister le soutien financier et l'hebergement",
				},
				Priority:      domain.PriorityMedium,
				EstimatedTime: "1 jour",
				Dependencies:  []string{},
			},
			{
				ID:    "book_appointment",
				Title: "Reserver le rendez-vous visa",
				Steps: []string{
					"Creer un compte consulaire",
					"Choisir le premier creneau disponible",
					"Televerser les documents obligatoires",
				},
				Priority:      domain.PriorityHigh,
				EstimatedTime: "2 jours",
				Dependencies:  []string{"cover_letter"},
			},
		},
		Documents: []domain.DocumentCategory{
			{Category: "Identite", Items: []domain.DocumentItem{
				{Name: "Passeport", Why: "Justificatif d'identite et document de voyage", Priority: domain.PriorityHigh, CommonMistakes: []string{"Pages expirees", "Signatures manquantes"}},
				{Name: "Photos d'identite", Why: "Exigees pour la demande de visa", Priority: domain.PriorityMedium, CommonMistakes: []string{"Fond incorrect", "Mauvaises dimensions"}},
			}},
			{Category: "Finances", Items: []domain.DocumentItem{
				{Name: "Releves bancaires ou lettre du garant", Why: "Prouver des ressources suffisantes", Priority: domain.PriorityHigh, CommonMistakes: []string{"Releves non tamponnes", "Piece d'identite du garant manquante"}},
			}},
		},
		Risks: []domain.RiskItem{
			{
				ID:           "appointment_slots",
				Risk:         "Les creneaux de rendez-vous peuvent etre limites",
				WhyItMatters: "Les retards peuvent decaler les dates de voyage",
				Mitigation:   []string{"Reserver immediatement", "Surveiller les annulations"},
				Severity:     domain.SeverityMedium,
			},
		},
	},
}

// TemplateFor returns the template for lang, falling back to English.
func TemplateFor(lang domain.Language) Template {
	if t, ok := templates[lang]; ok {
		return t
	}
	return templates[domain.LanguageEN]
}
