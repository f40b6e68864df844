package arabic

import "github.com/future-architect/qurantag/nlp"

func word(surface, root, tags string, class Class, senses ...string) Entry {
	return Entry{Surface: surface, Root: root, Tags: tags, Class: class, Senses: senses}
}

func idiom(surface, root, tags string, morphemes ...string) Entry {
	return Entry{Surface: surface, Root: root, Tags: tags, Class: ClassIdiom, Morphemes: morphemes}
}

// Registration order matters for normalized keys: the most frequent sense of
// an undiacritized form comes first.
func coreEntries() []Entry {
	var entries []Entry
	entries = append(entries,
		// prepositions
		word("مِن", "م.ن", "1.1", ClassParticle),
		word("مِنْ", "م.ن", "1.1", ClassParticle),
		word("فِي", "ف.#", "1.1", ClassParticle),
		word("عَلَى", "ع.ل.و", "1.1", ClassParticle),
		word("عَلَىٰ", "ع.ل.و", "1.1", ClassParticle),
		word("إِلَى", "ء.ل.ي", "1.1", ClassParticle),
		word("إِلَىٰ", "ء.ل.ي", "1.1", ClassParticle),
		word("عَنْ", "ع.ن", "1.1", ClassParticle),
		word("عَن", "ع.ن", "1.1", ClassParticle),
		word("حَتَّى", "", "1.1", ClassParticle),
		word("حَتَّىٰ", "", "1.1", ClassParticle),
		word("مَعَ", "", "1.1", ClassParticle),

		// conjunctions
		word("وَ", "", "1.2", ClassConjunction),
		word("فَ", "", "1.2", ClassConjunction),
		word("أَوْ", "", "1.2", ClassConjunction),
		word("أَمْ", "", "1.2", ClassConjunction),
		word("ثُمَّ", "ث.م.م", "1.2", ClassConjunction),

		// subjunctive, jussive and conditional
		word("أَنْ", "", "1.3", ClassParticle),
		word("لَنْ", "", "1.3", ClassParticle),
		word("كَيْ", "", "1.3", ClassParticle),
		word("لَمْ", "", "1.4", ClassParticle),
		word("لَمَّا", "", "1.4", ClassParticle),
		word("لَمّا", "", "1.4", ClassParticle),
		word("لَوْ", "", "1.4", ClassParticle),
		word("إِنْ", "", "1.4", ClassParticle),
		word("إِن", "", "1.4", ClassParticle),

		// exception
		word("إِلَّا", "", "1.8", ClassParticle),
		word("إِلّا", "", "1.8", ClassParticle),

		// emphasis
		word("إِنَّ", "ء.ن.ن", "1.9", ClassEmphasis),
		word("أَنَّ", "ء.ن.ن", "1.9", ClassEmphasis),
		word("قَدْ", "", "1.9", ClassEmphasis),

		// negation; ما defaults to negation, see Senses
		word("لا", "ل.#", "1.10", ClassNegation),
		word("لَا", "ل.#", "1.10", ClassNegation),
		word("ما", "م.#", "1.10", ClassNegation, "2.4", "1.7"),
		word("مَا", "م.#", "1.10", ClassNegation, "2.4", "1.7"),

		// relative nouns; مَن defaults to the relative sense
		word("مَن", "", "2.4", ClassRelative, "1.7"),
		word("مَنْ", "", "2.4", ClassRelative, "1.7"),
		idiom("الَّذِي", "ذ.#.#", "1.5,2.4", "ال", "لَّذِي"),
		idiom("الَّذِينَ", "ذ.#.#", "1.5,2.4", "ال", "لَّذِينَ"),
		idiom("الَّتِي", "", "1.5,2.4", "ال", "لَّتِي"),

		// demonstratives
		word("هٰذا", "", "2.3", ClassDemonstrative),
		word("هَٰذَا", "", "2.3", ClassDemonstrative),
		word("هٰذِهِ", "", "2.3", ClassDemonstrative),
		word("ذٰلِكَ", "", "2.3", ClassDemonstrative),
		word("ذَٰلِكَ", "", "2.3", ClassDemonstrative),
		word("تِلْكَ", "", "2.3", ClassDemonstrative),
		word("أُولٰئِكَ", "", "2.3", ClassDemonstrative),
		word("أُولَٰئِكَ", "", "2.3", ClassDemonstrative),
		word("هٰؤُلاءِ", "", "2.3", ClassDemonstrative),

		// disjoint pronouns
		word("هُوَ", "", "4.1", ClassPronoun),
		word("هِيَ", "", "4.1", ClassPronoun),
		word("هُمْ", "", "4.1", ClassPronoun),
		word("هُم", "", "4.1", ClassPronoun),
		word("هُمَا", "", "4.1", ClassPronoun),
		word("هُنَّ", "", "4.1", ClassPronoun),
		word("أَنْتَ", "", "4.1", ClassPronoun),
		word("أَنتَ", "", "4.1", ClassPronoun),
		word("أَنْتُمْ", "", "4.1", ClassPronoun),
		word("أَنتُم", "", "4.1", ClassPronoun),
		word("أَنَا", "", "4.1", ClassPronoun),
		word("أَنا", "", "4.1", ClassPronoun),
		word("نَحْنُ", "", "4.1", ClassPronoun),

		// proper nouns
		idiom("اللّٰه", "ء.ل.ه", "1.5,2.2", "ال", "لّٰه"),
		idiom("ٱللَّهُ", "ء.ل.ه", "1.5,2.2", "ٱل", "لَّهُ"),
		word("مُوسَى", "NTWS", "2.2", ClassProperNoun),
		word("مُوسَىٰ", "NTWS", "2.2", ClassProperNoun),
		word("إِبْراهِيم", "NTWS", "2.2", ClassProperNoun),
		word("إِبْرَاهِيمَ", "NTWS", "2.2", ClassProperNoun),
		word("إِبْرَٰهِيمَ", "NTWS", "2.2", ClassProperNoun),
		word("عِيسَى", "NTWS", "2.2", ClassProperNoun),
		word("مُحَمَّد", "NTWS", "2.2", ClassProperNoun),
		word("آدَم", "NTWS", "2.2", ClassProperNoun),
		word("نُوح", "NTWS", "2.2", ClassProperNoun),

		// multi-morpheme corrections
		idiom("بِآياتِي", "ء.ي.ي", "1.1,2.1,4.2", "بِ", "آيات", "ِي"),
		idiom("اسْتَجابُوا", "ج.و.ب", "3.1,4.2", "اسْتَجاب", "ُوا"),
		idiom("لَقَدْ", "", "1.9,1.9", "لَ", "قَدْ"),
		idiom("بِسْمِ", "س.م.و", "1.1,2.1", "بِ", "سْمِ"),
	)
	return entries
}

// extendedEntries adds the classes the reclassification pass learned to resolve.
func extendedEntries() []Entry {
	entries := coreEntries()
	entries = append(entries,
		// vocative and interrogative
		word("يا", "", "1.6", ClassParticle),
		word("يَا", "", "1.6", ClassParticle),
		word("هَلْ", "", "1.7", ClassParticle),
		word("أَ", "", "1.7", ClassParticle),
		word("ءَ", "", "1.7", ClassParticle),
		word("كَيْفَ", "", "1.7", ClassParticle),

		// future, digression, rectification
		word("سَوْفَ", "", "1.12", ClassParticle),
		word("بَلْ", "", "1.14", ClassParticle),
		word("لٰكِنْ", "", "1.18", ClassParticle),
		word("لٰكِن", "", "1.18", ClassParticle),
		word("لَٰكِنَّ", "", "1.18", ClassParticle),

		// adverbs of time
		word("إِذا", "", "5.1", ClassAdverb),
		word("إِذَا", "", "5.1", ClassAdverb),
		word("إِذْ", "", "5.1", ClassAdverb),
		word("بَعْدَ", "ب.ع.د", "5.1", ClassAdverb),
		word("قَبْلَ", "ق.ب.ل", "5.1", ClassAdverb),
		word("يَوْمَئِذٍ", "ي.و.م", "5.1", ClassAdverb),
		word("حِينَ", "ح.ي.ن", "5.1", ClassAdverb),

		// adverbs of place
		word("عِنْدَ", "ع.ن.د", "5.2", ClassAdverb),
		word("ثَمَّ", "ث.م.م", "5.2", ClassAdverb),
		word("فَوْقَ", "ف.و.ق", "5.2", ClassAdverb),
		word("تَحْتَ", "ت.ح.ت", "5.2", ClassAdverb),
		word("بَيْنَ", "ب.ي.ن", "5.2", ClassAdverb),
		word("دُونِ", "د.و.ن", "5.2", ClassAdverb),

		// more proper nouns
		word("جَهَنَّم", "NTWS", "2.2", ClassProperNoun),
		word("فِرْعَوْن", "NTWS", "2.2", ClassProperNoun),
		word("مَرْيَم", "NTWS", "2.2", ClassProperNoun),
		word("هَارُون", "NTWS", "2.2", ClassProperNoun),
		word("يُوسُف", "NTWS", "2.2", ClassProperNoun),
		word("إِسْرَائِيل", "NTWS", "2.2", ClassProperNoun),
	)
	return entries
}

var imperfectivePrefixes = []string{"يَ", "تَ", "نَ", "أَ"}

// prefix particles glued to the start of a stem
var corePrefixes = map[string]nlp.Code{
	"وَ":  nlp.Conjunction,
	"فَ":  nlp.Conjunction,
	"بِ":  nlp.Preposition,
	"لِ":  nlp.Preposition,
	"لَ":  nlp.Preposition,
	"كَ":  nlp.Simile,
	"ال":  nlp.DefiniteArticle,
	"اَل": nlp.DefiniteArticle,
	"ٱل":  nlp.DefiniteArticle,
}

var extendedPrefixes = map[string]nlp.Code{
	"سَ": nlp.Future,
	"أَ": nlp.Interrogative,
}

// attached pronoun suffixes
var suffixPronouns = map[string]nlp.Code{
	"هِ":   nlp.AttachedPronoun,
	"هُ":   nlp.AttachedPronoun,
	"هُم":  nlp.AttachedPronoun,
	"هُمْ": nlp.AttachedPronoun,
	"هُمُ": nlp.AttachedPronoun,
	"هِم":  nlp.AttachedPronoun,
	"هِمْ": nlp.AttachedPronoun,
	"هُمَا": nlp.AttachedPronoun,
	"هُنَّ": nlp.AttachedPronoun,
	"ها":   nlp.AttachedPronoun,
	"هَا":  nlp.AttachedPronoun,
	"كَ":   nlp.AttachedPronoun,
	"كِ":   nlp.AttachedPronoun,
	"كُم":  nlp.AttachedPronoun,
	"كُمْ": nlp.AttachedPronoun,
	"كُمَا": nlp.AttachedPronoun,
	"نا":   nlp.AttachedPronoun,
	"نَا":  nlp.AttachedPronoun,
	"نِي":  nlp.AttachedPronoun,
	"ِي":   nlp.AttachedPronoun,
	"ي":    nlp.AttachedPronoun,
	"ُوا":  nlp.AttachedPronoun,
	"وا":   nlp.AttachedPronoun,
	"ُونَ": nlp.AttachedPronoun,
	"تُم":  nlp.AttachedPronoun,
	"تُمْ": nlp.AttachedPronoun,
	"تُنَّ": nlp.AttachedPronoun,
	"تُمَا": nlp.AttachedPronoun,
	"تِ":   nlp.AttachedPronoun,
	"تُ":   nlp.AttachedPronoun,
	"تْ":   nlp.AttachedPronoun,
	"ا":    nlp.AttachedPronoun,
	"نَ":   nlp.AttachedPronoun,
}

// subject suffixes that only attach to verbs
var verbalSuffixes = map[string]bool{
	"ُوا":  true,
	"وا":   true,
	"تُم":  true,
	"تُمْ": true,
	"تُنَّ": true,
	"تُمَا": true,
}

// stems left behind once ال is split off
var fragments = map[string]nlp.Code{
	"لّٰه":    nlp.ProperNoun,
	"لَّه":    nlp.ProperNoun,
	"لَّذِي":  nlp.RelativeNoun,
	"لَّذِينَ": nlp.RelativeNoun,
	"لَّتِي":  nlp.RelativeNoun,
	"لَّذَانِ": nlp.RelativeNoun,
	"لَّاتِي": nlp.RelativeNoun,
	"لَّٰتِي": nlp.RelativeNoun,
}
