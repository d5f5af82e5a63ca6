package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ExpoSync/internal/model"
)

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)
)

// Date 把外部日期串归一化为 ISO 8601（YYYY-MM-DD）
// 已是 ISO 的原样返回；支持 D/M/YY 与 DD/MM/YYYY（分隔符 / 或 -），两位年份补全为 20xx
// 空串或无法识别的格式返回 nil（调用方据此触发兜底，而不是报错）
func Date(input string) *string {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}
	if isoDateRe.MatchString(s) {
		return &s
	}
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	out := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &out
}

// URL 规范化网址作为连接键：小写、去协议、去www前缀、去一个尾部斜杠
// participation 解析时比较的双侧都必须经过本函数
func URL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}

type eventTypeSynonym struct {
	key string
	typ model.EventType
}

// eventTypeSynonyms 类型同义词表（法/英变体），键为小写；有序以保证子串匹配结果稳定
var eventTypeSynonyms = []eventTypeSynonym{
	{"congres", model.EventTypeCongres},
	{"congrès", model.EventTypeCongres},
	{"congress", model.EventTypeCongres},
	{"conference", model.EventTypeConference},
	{"conférence", model.EventTypeConference},
	{"convention", model.EventTypeConvention},
	{"ceremonie", model.EventTypeCeremonie},
	{"cérémonie", model.EventTypeCeremonie},
	{"ceremony", model.EventTypeCeremonie},
	{"salon", model.EventTypeSalon},
	{"salons", model.EventTypeSalon},
	{"foire", model.EventTypeSalon},
	{"exposition", model.EventTypeSalon},
	{"trade show", model.EventTypeSalon},
}

// EventType 归一化为闭合枚举：先精确查同义词表，再做子串重叠匹配，否则兜底 salon
// 本函数不会失败——未知类型退化为最常见分类
func EventType(raw string) model.EventType {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return model.EventTypeSalon
	}
	for _, syn := range eventTypeSynonyms {
		if s == syn.key {
			return syn.typ
		}
	}
	for _, syn := range eventTypeSynonyms {
		if strings.Contains(s, syn.key) || strings.Contains(syn.key, s) {
			return syn.typ
		}
	}
	return model.EventTypeSalon
}
