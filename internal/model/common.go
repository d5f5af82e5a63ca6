package model

// EventType 事件类型闭合枚举（数据库侧按闭合取值消费，导入前必须归一化）
type EventType string

const (
	EventTypeSalon      EventType = "salon"
	EventTypeConference EventType = "conference"
	EventTypeCongres    EventType = "congres"
	EventTypeConvention EventType = "convention"
	EventTypeCeremonie  EventType = "ceremonie"
)

// ResolutionOutcome participation 记录的解析结论（仅诊断/汇总用，不落库）
type ResolutionOutcome string

const (
	OutcomeMappable          ResolutionOutcome = "mappable"
	OutcomeEventNotFound     ResolutionOutcome = "event_not_found"
	OutcomeExhibitorNotFound ResolutionOutcome = "exhibitor_not_found"
	OutcomeBothNotFound      ResolutionOutcome = "both_not_found"
)

// ImportError 单条记录级错误：校验拒绝或解析失败，不中断其余记录
type ImportError struct {
	Entity   string `json:"entity"`              // events/exposants/participations
	RecordID string `json:"record_id,omitempty"` // 外部记录ID（有则带上）
	Reason   string `json:"reason"`
}

// ImportSummary 一次完整导入的聚合结果（编排器HTTP响应体）
type ImportSummary struct {
	Success                bool          `json:"success"`
	EventsImported         int           `json:"eventsImported"`
	ExposantsImported      int           `json:"exposantsImported"`
	ParticipationsImported int           `json:"participationsImported"`
	SyncedEvents           int           `json:"syncedEvents"` // 缺口修复阶段补晋升到生产层的事件数
	Errors                 []ImportError `json:"errors"`
}

// PhaseResult 单个导入器的结果
type PhaseResult struct {
	Imported int
	Synced   int // 仅 participation 阶段使用
	Errors   []ImportError
}
