package service

// Airtable字段名映射表：小写snake_case为权威命名，三个导入器共用这一份，
// 避免多套导入路径各自维护字段名而产生漂移
const (
	fieldIDEvent     = "id_event"
	fieldNomEvent    = "nom_event"
	fieldStatusEvent = "status_event"
	fieldTypeEvent   = "type_event"
	fieldSecteur     = "secteur"
	fieldDateDebut   = "date_debut"
	fieldDateFin     = "date_fin"
	fieldVille       = "ville"
	fieldPays        = "pays"
	fieldURLEvent    = "url_event"
	fieldDescription = "description"

	fieldIDExposant          = "id_exposant"
	fieldNomExposant         = "nom_exposant"
	fieldWebsiteExposant     = "website_exposant"
	fieldDescriptionExposant = "description_exposant"

	fieldIDEventText  = "id_event_text"
	fieldURLExpoEvent = "urlexpo_event"
)

const (
	statusApproved = "approved" // 仅该状态的事件允许进入暂存层（比较时不区分大小写）
	defaultVille   = "Inconnue" // ville为必填下游字段，缺失时的兜底值
	defaultPays    = "France"   // 外部记录未提供国家时的兜底值
)

const (
	entityEvents         = "events"
	entityExposants      = "exposants"
	entityParticipations = "participations"
)
