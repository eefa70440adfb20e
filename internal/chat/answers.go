package chat

import (
	"strings"

	"visaverse-backend/internal/domain"
)

type topic int

const (
	topicDefault topic = iota
	topicPassport
	topicFunds
	topicTimeline
)

// topicKeywords are checked in order; the first hit wins.
var topicKeywords = []struct {
	topic topic
	en    []string
	fr    []string
}{
	{topicPassport, []string{"passport"}, []string{"passport", "passeport"}},
	{topicFunds, []string{"fund", "money"}, []string{"fund", "money", "fonds"}},
	{topicTimeline, []string{"timeline", "how long"}, []string{"timeline", "how long", "delai"}},
}

var cannedAnswers = map[domain.Language]map[topic]string{
	domain.LanguageEN: {
		topicPassport: "Make sure your passport has at least six months of validity beyond your return date and at least two blank pages." +
			" If it expires sooner, plan to renew before booking appointments.",
		topicFunds: "Visa officers typically expect 3-6 months of bank statements showing stable balances." +
			" If you rely on a sponsor, attach their ID and proof of relationship.",
		topicTimeline: "Most applications take 6-8 weeks end-to-end, factoring in biometrics and decision time." +
			" Apply as early as appointment slots allow to avoid delays.",
		topicDefault: "Focus on gathering mandatory documents first, then schedule your appointment as soon as slots open." +
			" Bring originals plus photocopies to avoid rescheduling.",
	},
	domain.LanguageFR: {
		topicPassport: "Assurez-vous que votre passeport soit valide au moins six mois apres votre retour et comporte deux pages libres." +
			" S'il expire bientot, prevoyez de le renouveler avant de reserver un rendez-vous.",
		topicFunds: "Les consulats attendent souvent 3 a 6 mois de releves bancaires montrant des soldes stables." +
			" Si un sponsor vous aide, ajoutez sa piece d'identite et la preuve du lien.",
		topicTimeline: "La plupart des demandes prennent 6 a 8 semaines, en tenant compte des biometries et de la decision." +
			" Deposez tot pour eviter les retards.",
		topicDefault: "Commencez par les documents obligatoires, puis reservez un rendez-vous des qu'un slot est disponible." +
			" Apportez les originaux et des photocopies pour eviter un report.",
	},
}

func classify(message string, lang domain.Language) topic {
	msg := strings.ToLower(message)
	for _, tk := range topicKeywords {
		words := tk.en
		if lang == domain.LanguageFR {
			words = tk.fr
		}
		for _, w := range words {
			if strings.Contains(msg, w) {
				return tk.topic
			}
		}
	}
	return topicDefault
}

// CannedAnswer returns the fixed answer for the message topic.
func CannedAnswer(message string, lang domain.Language) string {
	answers, ok := cannedAnswers[lang]
	if !ok {
		answers = cannedAnswers[domain.LanguageEN]
	}
	return answers[classify(message, lang)]
}
