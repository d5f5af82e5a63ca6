package model

// AirtableRecord Airtable 原始记录：字段为弱类型（字符串/单元素数组/缺失）
type AirtableRecord struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// Str 按字段名取字符串值，缺失或类型不符时返回空串
func (r *AirtableRecord) Str(field string) string {
	v, ok := r.Fields[field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// First 取字段首个字符串值：关联字段在 Airtable 中以单元素数组返回
func (r *AirtableRecord) First(field string) string {
	v, ok := r.Fields[field]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		s, _ := t[0].(string)
		return s
	}
	return ""
}

// AirtableRecordPage 单页列表响应，Offset 非空表示还有后续页
type AirtableRecordPage struct {
	Records []*AirtableRecord `json:"records"`
	Offset  string            `json:"offset,omitempty"`
}

// AirtableSort 列表排序项
type AirtableSort struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"` // asc/desc
}

// AirtableListOptions 列表查询参数（均可缺省）
type AirtableListOptions struct {
	MaxRecords      int
	Offset          string
	FilterByFormula string
	Sort            []AirtableSort
}

// AirtableUpsertResult 批量 upsert 结果拆分
type AirtableUpsertResult struct {
	Created []*AirtableRecord
	Updated []*AirtableRecord
}
