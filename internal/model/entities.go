package model

import (
	"time"

	"gorm.io/datatypes"
)

// StagingEvent 暂存层事件表：每次导入按 id_event 整体覆盖，管道不删除记录
type StagingEvent struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	IDEvent     string    `gorm:"column:id_event;type:varchar(64);uniqueIndex:uk_staging_events_id_event;not null;comment:外部系统事件ID（跨导入稳定）"`
	NomEvent    string    `gorm:"column:nom_event;type:varchar(256);not null;comment:事件名称"`
	TypeEvent   string    `gorm:"column:type_event;type:varchar(16);not null;comment:事件类型：salon/conference/congres/convention/ceremonie"`
	Secteur     string    `gorm:"column:secteur;type:varchar(128);comment:行业领域（自由文本）"`
	DateDebut   *string   `gorm:"column:date_debut;type:varchar(10);comment:开始日期（ISO 8601，无法解析时为空）"`
	DateFin     *string   `gorm:"column:date_fin;type:varchar(10);comment:结束日期（ISO 8601，缺失时回退为开始日期）"`
	Ville       string    `gorm:"column:ville;type:varchar(128);not null;comment:城市（缺失时兜底为Inconnue）"`
	Pays        string    `gorm:"column:pays;type:varchar(64);comment:国家（缺失时兜底为France）"`
	URLEvent    string    `gorm:"column:url_event;type:varchar(512);comment:事件官网"`
	Description string    `gorm:"column:description;type:text;comment:事件描述"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// Event 生产层事件表：由暂存层晋升而来，visible 默认 false，由运营人工放行
type Event struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	EventUUID   string         `gorm:"column:event_uuid;type:varchar(64);uniqueIndex:uk_events_event_uuid;not null;comment:应用内部全局唯一ID"`
	IDEvent     string         `gorm:"column:id_event;type:varchar(64);uniqueIndex:uk_events_id_event;not null;comment:外部系统事件ID（upsert键）"`
	NomEvent    string         `gorm:"column:nom_event;type:varchar(256);not null;comment:事件名称"`
	TypeEvent   string         `gorm:"column:type_event;type:varchar(16);not null;comment:事件类型（闭合枚举）"`
	Secteur     datatypes.JSON `gorm:"column:secteur;type:jsonb;comment:行业领域（单元素数组，应用侧按数组消费）"`
	DateDebut   *string        `gorm:"column:date_debut;type:varchar(10);comment:开始日期（ISO 8601）"`
	DateFin     *string        `gorm:"column:date_fin;type:varchar(10);comment:结束日期（ISO 8601）"`
	Ville       string         `gorm:"column:ville;type:varchar(128);not null;comment:城市"`
	Pays        string         `gorm:"column:pays;type:varchar(64);default:France;comment:国家（默认France）"`
	URLEvent    string         `gorm:"column:url_event;type:varchar(512);comment:事件官网"`
	Description string         `gorm:"column:description;type:text;comment:事件描述"`
	Visible     bool           `gorm:"column:visible;type:boolean;default:false;comment:是否对外可见（人工放行，导入不回写）"`
	Slug        *string        `gorm:"column:slug;type:varchar(256);comment:URL slug（置空以触发下游生成）"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// Exposant 参展商表：website_exposant 规范化后作为 participation 解析的连接键
type Exposant struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	IDExposant      string    `gorm:"column:id_exposant;type:varchar(64);uniqueIndex:uk_exposants_id_exposant;not null;comment:外部系统参展商ID（upsert键）"`
	NomExposant     string    `gorm:"column:nom_exposant;type:varchar(256);not null;comment:参展商名称"`
	WebsiteExposant string    `gorm:"column:website_exposant;type:varchar(512);comment:官网原始值（比较时双侧规范化）"`
	Description     string    `gorm:"column:description;type:text;comment:参展商描述"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// Participation 参展关系表：事件×参展商多对多关联，(id_event, id_exposant) 复合唯一
// 约束在模型层显式声明，由 AutoMigrate 建立；upsert 前仓储会校验该索引确实存在
type Participation struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	IDEvent      string    `gorm:"column:id_event;type:varchar(64);uniqueIndex:uk_participations_event_exposant,priority:1;not null;comment:外部事件ID"`
	IDExposant   string    `gorm:"column:id_exposant;type:varchar(64);uniqueIndex:uk_participations_event_exposant,priority:2;not null;comment:外部参展商ID"`
	URLExpoEvent string    `gorm:"column:urlexpo_event;type:varchar(512);uniqueIndex:uk_participations_urlexpo;not null;comment:外部系统按参展商×事件生成的唯一token"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

func (StagingEvent) TableName() string  { return "staging_events" }
func (Event) TableName() string         { return "events" }
func (Exposant) TableName() string      { return "exposants" }
func (Participation) TableName() string { return "participations" }
