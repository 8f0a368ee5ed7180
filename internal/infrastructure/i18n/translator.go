// Package i18n localizes the user-facing labels of the API.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English source strings.
const (
	MsgEnterPin            = "Enter Pin"
	MsgSelfReview          = "Self-reviews are not allowed."
	MsgReviewProcessed     = "Review successfully processed."
	MsgModerationProcessed = "Moderation actions saved."
	MsgNomApproved         = "Nomination Approved/Public"
	MsgNomPreliminary      = "Nomination Denied/Preliminary"
	MsgNomRejected         = "Nomination Denied/Incomplete"
	MsgAdminReview         = "Admin Review"
	MsgPenApproved         = "Approved/Public"
	MsgPenPreliminary      = "Approved/Preliminary"
	MsgPenRejected         = "Preliminary Denied/Incomplete"
)

var translations = map[language.Tag]map[string]string{
	language.French: {
		MsgEnterPin:            "Saisissez votre code PIN",
		MsgSelfReview:          "Vous ne pouvez pas examiner vos propres modules.",
		MsgReviewProcessed:     "Examen traité avec succès.",
		MsgModerationProcessed: "Actions de modération enregistrées.",
		MsgNomApproved:         "Nomination approuvée/Public",
		MsgNomPreliminary:      "Nomination refusée/Préliminaire",
		MsgNomRejected:         "Nomination refusée/Incomplet",
		MsgAdminReview:         "Examen administrateur",
		MsgPenApproved:         "Approuvé/Public",
		MsgPenPreliminary:      "Approuvé/Préliminaire",
		MsgPenRejected:         "Préliminaire refusé/Incomplet",
	},
	language.German: {
		MsgEnterPin:            "PIN eingeben",
		MsgSelfReview:          "Eigene Add-ons dürfen nicht geprüft werden.",
		MsgReviewProcessed:     "Prüfung erfolgreich verarbeitet.",
		MsgModerationProcessed: "Moderationsaktionen gespeichert.",
		MsgNomApproved:         "Nominierung angenommen/Öffentlich",
		MsgNomPreliminary:      "Nominierung abgelehnt/Vorläufig",
		MsgNomRejected:         "Nominierung abgelehnt/Unvollständig",
		MsgAdminReview:         "Administratorprüfung",
		MsgPenApproved:         "Angenommen/Öffentlich",
		MsgPenPreliminary:      "Angenommen/Vorläufig",
		MsgPenRejected:         "Vorläufig abgelehnt/Unvollständig",
	},
}

// Translator resolves message keys for a language
type Translator struct {
	catalog catalog.Catalog
	tags    []language.Tag
	matcher language.Matcher
}

// NewTranslator builds the translator with the bundled translations.
// English is the fallback and the first supported tag.
func NewTranslator() *Translator {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}

	for tag, msgs := range translations {
		tags = append(tags, tag)
		for key, msg := range msgs {
			_ = builder.SetString(tag, key, msg)
		}
	}

	return &Translator{
		catalog: builder,
		tags:    tags,
		matcher: language.NewMatcher(tags),
	}
}

// Match picks the best supported language for an Accept-Language header
func (t *Translator) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return language.English
	}
	_, idx, _ := t.matcher.Match(prefs...)
	return t.tags[idx]
}

// T translates key. Unknown keys are returned unchanged.
func (t *Translator) T(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key, args...)
}

// Map translates every value of labels
func (t *Translator) Map(tag language.Tag, labels map[int]string) map[int]string {
	out := make(map[int]string, len(labels))
	for k, v := range labels {
		out[k] = t.T(tag, v)
	}
	return out
}
