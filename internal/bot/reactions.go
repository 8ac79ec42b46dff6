// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package bot

import "strings"

// suggestionKeywords are the words that turn a mention of Giorgio into
// a request for something to watch.
var suggestionKeywords = []string{
	"suggestion",
	"suggest",
	"recommend",
	"what to watch",
	"movie",
	"series",
}

// TODO: replace the canned suggestion with real picks once the
// suggestion engine exists.
const suggestionReply = "🎬 *Ah, you want Giorgio to guide you through the world of the seventh art!*\n\n" +
	"Patience, *caro mio*... My connoisseur brain is still under construction. " +
	"Soon I will propose masterpieces worthy of Fellini! 🇮🇹"

const mentionFallback = "🤌 *Ciao bello!* You called me but I do not understand what you want...\n" +
	"Mention me with **suggestion** and I will find you a work worthy of the name!"

// mentionReply picks Giorgio's answer to a message that mentions him.
func mentionReply(content string) string {
	lower := strings.ToLower(content)
	for _, word := range suggestionKeywords {
		if strings.Contains(lower, word) {
			return suggestionReply
		}
	}
	return mentionFallback
}

// giorgioReaction returns Giorgio's commentary for a rating. He has
// opinions about every score.
func giorgioReaction(rating int) string {
	switch rating {
	case 1:
		return "🤮 *Madonna!* Such an insult to cinema... I hope you are joking, *caro*."
	case 2:
		return "😤 *Mamma mia...* Even my grandmother could shoot a better film on her phone."
	case 3:
		return "😒 Meh. Like overcooked pasta, edible but sad."
	case 4:
		return "🤷 Mediocre. Neither good nor bad, like a lukewarm espresso."
	case 5:
		return "😐 Right in the middle... As indecisive as me in front of a pizza menu."
	case 6:
		return "🙂 Not bad! It is no Fellini, but it watches well enough."
	case 7:
		return "😊 Ah, now we are talking! You are developing taste, *amico*."
	case 8:
		return "😍 *Bellissimo!* That is cinema! My Italian heart is pleased."
	case 9:
		return "🤩 *Magnifico!* A masterpiece! You have the soul of a true cinephile!"
	case 10:
		return "🥹 *Perfetto!* I weep tears of joy... As beautiful as the sunset over Venice!"
	default:
		return "🤔 *Interessante...*"
	}
}
