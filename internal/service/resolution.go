package service

import (
	"fmt"

	"ExpoSync/internal/model"
	"ExpoSync/internal/normalize"
)

// ParticipationResolution 单条participation记录的解析明细
// 真实导入与只读诊断共用同一套分类逻辑，保证诊断结果能解释导入行为
type ParticipationResolution struct {
	RecordID      string                  `json:"record_id"`
	IDEvent       string                  `json:"id_event"`
	Website       string                  `json:"website"`        // 原始值
	Domain        string                  `json:"domain"`         // 规范化后的连接键
	EventFound    bool                    `json:"event_found"`    // 事件于暂存或生产层存在
	ExposantFound bool                    `json:"exposant_found"` // 规范化域名命中参展商
	Outcome       model.ResolutionOutcome `json:"outcome"`
	IDExposant    string                  `json:"id_exposant,omitempty"` // 命中时的参展商外部ID
}

// Reason 不可映射记录的操作员可读原因（带原始值与规范化值，便于排查）
func (res *ParticipationResolution) Reason() string {
	switch res.Outcome {
	case model.OutcomeEventNotFound:
		return fmt.Sprintf("évènement introuvable (id_event=%q)", res.IDEvent)
	case model.OutcomeExhibitorNotFound:
		return fmt.Sprintf("exposant introuvable (website=%q, domaine=%q)", res.Website, res.Domain)
	case model.OutcomeBothNotFound:
		return fmt.Sprintf("évènement introuvable (id_event=%q) et exposant introuvable (website=%q, domaine=%q)",
			res.IDEvent, res.Website, res.Domain)
	}
	return ""
}

// resolveParticipation 对一条外部participation记录做事件/参展商双侧解析
// knownEvents为暂存∪生产层外部事件ID集合，exposantsByDomain以normalize.URL为键
func resolveParticipation(r *model.AirtableRecord, knownEvents map[string]bool, exposantsByDomain map[string]*model.Exposant) ParticipationResolution {
	res := ParticipationResolution{
		RecordID: r.ID,
		IDEvent:  r.First(fieldIDEventText), // 关联字段可能是单元素数组
		Website:  r.Str(fieldWebsiteExposant),
	}
	res.Domain = normalize.URL(res.Website)
	res.EventFound = res.IDEvent != "" && knownEvents[res.IDEvent]
	if res.Domain != "" {
		if exp, ok := exposantsByDomain[res.Domain]; ok {
			res.ExposantFound = true
			res.IDExposant = exp.IDExposant
		}
	}

	switch {
	case res.EventFound && res.ExposantFound:
		res.Outcome = model.OutcomeMappable
	case !res.EventFound && !res.ExposantFound:
		res.Outcome = model.OutcomeBothNotFound
	case !res.EventFound:
		res.Outcome = model.OutcomeEventNotFound
	default:
		res.Outcome = model.OutcomeExhibitorNotFound
	}
	return res
}

// buildExposantsByDomain 参展商查找表：键为规范化域名（与解析侧用同一个规范化函数）
func buildExposantsByDomain(exposants []*model.Exposant) map[string]*model.Exposant {
	byDomain := make(map[string]*model.Exposant, len(exposants))
	for _, exp := range exposants {
		domain := normalize.URL(exp.WebsiteExposant)
		if domain == "" {
			continue
		}
		byDomain[domain] = exp
	}
	return byDomain
}
