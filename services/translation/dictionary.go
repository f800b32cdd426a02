package translation

import "strings"

// phrases are common travel phrases keyed by language, then by the
// normalized Korean or English phrase.
var phrases = map[string]map[string]string{
	"en": {
		"안녕하세요":      "Hello",
		"감사합니다":      "Thank you",
		"얼마예요?":      "How much is it?",
		"화장실이 어디예요?": "Where is the restroom?",
		"도와주세요":      "Please help me",
		"네":          "Yes",
		"아니요":        "No",
	},
	"ko": {
		"hello":                  "안녕하세요",
		"thank you":              "감사합니다",
		"how much is it?":        "얼마예요?",
		"where is the restroom?": "화장실이 어디예요?",
		"please help me":         "도와주세요",
		"yes":                    "네",
		"no":                     "아니요",
	},
	"ja": {
		"안녕하세요":     "こんにちは",
		"감사합니다":     "ありがとうございます",
		"hello":     "こんにちは",
		"thank you": "ありがとうございます",
	},
	"zh": {
		"안녕하세요":     "你好",
		"감사합니다":     "谢谢",
		"hello":     "你好",
		"thank you": "谢谢",
	},
}

// lookupPhrase returns the dictionary translation of text into target.
func lookupPhrase(text, target string) (string, bool) {
	table, ok := phrases[target]
	if !ok {
		return "", false
	}
	out, ok := table[strings.ToLower(strings.TrimSpace(text))]
	return out, ok
}
