package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "received", "min", "max", "options" or "format"). Values are
// pre-rendered strings so the dictionary stays free of formatting logic.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		return messageJA(code, data)
	default:
		return messageEN(code, data)
	}
}

func messageEN(code string, data map[string]string) string {
	switch code {
	case "invalid_type":
		if exp, ok := data["expected"]; ok {
			if got, ok := data["received"]; ok {
				return "Expected " + exp + ", received " + got
			}
			return "Expected " + exp
		}
		return "Invalid input"
	case "required":
		return "Required"
	case "unknown_key":
		if k, ok := data["key"]; ok {
			return "Unrecognized key: \"" + k + "\""
		}
		return "Unrecognized key"
	case "duplicate_key":
		if k, ok := data["key"]; ok {
			return "Duplicate key: \"" + k + "\""
		}
		return "Duplicate key"
	case "too_short":
		if min, ok := data["min"]; ok {
			if data["kind"] == "array" {
				return "Array must contain at least " + min + " element(s)"
			}
			return "String must contain at least " + min + " character(s)"
		}
		return "Too short"
	case "too_long":
		if max, ok := data["max"]; ok {
			if data["kind"] == "array" {
				return "Array must contain at most " + max + " element(s)"
			}
			return "String must contain at most " + max + " character(s)"
		}
		return "Too long"
	case "too_small":
		if min, ok := data["min"]; ok {
			return "Number must be greater than or equal to " + min
		}
		return "Too small"
	case "too_big":
		if max, ok := data["max"]; ok {
			return "Number must be less than or equal to " + max
		}
		return "Too big"
	case "invalid_enum":
		if opts, ok := data["options"]; ok {
			if got, ok := data["received"]; ok {
				return "Invalid enum value. Expected " + opts + ", received " + got
			}
			return "Invalid enum value. Expected " + opts
		}
		return "Invalid enum value"
	case "invalid_format":
		switch data["format"] {
		case "email":
			return "Invalid email"
		case "url":
			return "Invalid url"
		case "uuid":
			return "Invalid uuid"
		}
		return "Invalid string format"
	case "element_error":
		return "Invalid array element"
	case "parse_error":
		return "Parse error"
	case "overflow":
		return "Number out of range"
	case "truncated":
		return "Input truncated"
	case "uniqueness":
		return "Duplicate value"
	case "custom":
		return "Invalid input"
	}
	return code
}

func messageJA(code string, data map[string]string) string {
	switch code {
	case "invalid_type":
		if exp, ok := data["expected"]; ok {
			if got, ok := data["received"]; ok {
				return exp + "型が必要ですが、" + got + "型を受け取りました"
			}
		}
		return "型が不正です"
	case "required":
		return "必須プロパティが不足しています"
	case "unknown_key":
		return "未知のキーです"
	case "duplicate_key":
		return "キーが重複しています"
	case "too_short":
		if min, ok := data["min"]; ok {
			if data["kind"] == "array" {
				return "配列の要素数は" + min + "以上でなければなりません"
			}
			return "文字列は" + min + "文字以上でなければなりません"
		}
		return "短すぎます"
	case "too_long":
		if max, ok := data["max"]; ok {
			if data["kind"] == "array" {
				return "配列の要素数は" + max + "以下でなければなりません"
			}
			return "文字列は" + max + "文字以下でなければなりません"
		}
		return "長すぎます"
	case "too_small":
		if min, ok := data["min"]; ok {
			return "数値は" + min + "以上でなければなりません"
		}
		return "小さすぎます"
	case "too_big":
		if max, ok := data["max"]; ok {
			return "数値は" + max + "以下でなければなりません"
		}
		return "大きすぎます"
	case "invalid_enum":
		if opts, ok := data["options"]; ok {
			return "許可されていない値です。期待値: " + opts
		}
		return "許可されていない値です"
	case "invalid_format":
		switch data["format"] {
		case "email":
			return "メールアドレスの形式が不正です"
		case "url":
			return "URLの形式が不正です"
		case "uuid":
			return "UUIDの形式が不正です"
		}
		return "文字列の形式が不正です"
	case "element_error":
		return "配列要素が不正です"
	case "parse_error":
		return "解析エラー"
	case "overflow":
		return "数値が範囲外です"
	case "truncated":
		return "打ち切られました"
	case "uniqueness":
		return "値が重複しています"
	case "custom":
		return "入力が不正です"
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
