package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// lookupChunkSize 按唯一字段批量查existence时，单条OR公式里塞的值个数上限
const lookupChunkSize = 50

// APIError Airtable非2xx响应：携带HTTP状态码与服务端消息，不自动重试，由调用方决策
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable api error (status %d): %s", e.Status, e.Message)
}

// Client Airtable REST客户端：所有调用前有固定限速延迟（约5 req/s）
type Client struct {
	cfg        *config.AirtableConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient 创建Airtable客户端
func NewClient(cfg *config.AirtableConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// 编译期断言：Client满足导入器消费的数据源接口
var _ interfaces.TabularSource = (*Client)(nil)

// throttle 限速预算：每次HTTP调用前等固定延迟，ctx取消则提前返回
func (c *Client) throttle(ctx context.Context) error {
	delay := time.Duration(c.cfg.ThrottleMs) * time.Millisecond
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tableURL 拼接 {base_url}/{base_id}/{table}
func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.BaseID),
		url.PathEscape(table),
	)
}

// doJSON 发送请求并解码JSON响应；非2xx返回*APIError
func (c *Client) doJSON(ctx context.Context, method, rawURL string, body any, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求Airtable失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("关闭Airtable响应体失败: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析Airtable响应失败: %w", err)
	}
	return nil
}

// readErrorMessage 提取服务端错误消息（标准错误包裹体，取不到则退回原始body）
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "unreadable error body"
	}
	var wrapper struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Error.Message != "" {
		if wrapper.Error.Type != "" {
			return fmt.Sprintf("%s: %s", wrapper.Error.Type, wrapper.Error.Message)
		}
		return wrapper.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// ListRecords 单页拉取
func (c *Client) ListRecords(ctx context.Context, table string, opts model.AirtableListOptions) (*model.AirtableRecordPage, error) {
	q := url.Values{}
	if opts.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	if opts.Offset != "" {
		q.Set("offset", opts.Offset)
	}
	if opts.FilterByFormula != "" {
		q.Set("filterByFormula", opts.FilterByFormula)
	}
	for i, s := range opts.Sort {
		q.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		if s.Direction != "" {
			q.Set(fmt.Sprintf("sort[%d][direction]", i), s.Direction)
		}
	}

	rawURL := c.tableURL(table)
	if encoded := q.Encode(); encoded != "" {
		rawURL += "?" + encoded
	}

	var page model.AirtableRecordPage
	if err := c.doJSON(ctx, http.MethodGet, rawURL, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ForEachPage 跟随offset游标逐页回调；单页失败即整体中止（不做部分持久化）
func (c *Client) ForEachPage(ctx context.Context, table string, opts model.AirtableListOptions, fn func(records []*model.AirtableRecord) error) error {
	for {
		page, err := c.ListRecords(ctx, table, opts)
		if err != nil {
			return err
		}
		if len(page.Records) > 0 {
			if err := fn(page.Records); err != nil {
				return err
			}
		}
		if page.Offset == "" {
			return nil
		}
		opts.Offset = page.Offset
	}
}

// ListAllRecords 全量物化到内存：小表专用，大表请改用ForEachPage流式消费
func (c *Client) ListAllRecords(ctx context.Context, table string, opts model.AirtableListOptions) ([]*model.AirtableRecord, error) {
	var all []*model.AirtableRecord
	err := c.ForEachPage(ctx, table, opts, func(records []*model.AirtableRecord) error {
		all = append(all, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Infof("成功拉取Airtable表[%s]共%d条记录", table, len(all))
	return all, nil
}

type writeRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type writePayload struct {
	Records []writeRecord `json:"records"`
}

// CreateRecords 批量创建：按batch_size切批、逐批串行提交（每批各付一次限速延迟）
// 某一批失败则整体中止；已成功的批不回滚（至少一次、非原子语义）
func (c *Client) CreateRecords(ctx context.Context, table string, fieldsList []map[string]any) ([]*model.AirtableRecord, error) {
	var created []*model.AirtableRecord
	for _, chunk := range interfaces.ChunkSlice(fieldsList, c.cfg.BatchSize) {
		payload := writePayload{}
		for _, fields := range chunk {
			payload.Records = append(payload.Records, writeRecord{Fields: fields})
		}
		var page model.AirtableRecordPage
		if err := c.doJSON(ctx, http.MethodPost, c.tableURL(table), payload, &page); err != nil {
			return created, fmt.Errorf("批量创建记录失败（已创建%d条）: %w", len(created), err)
		}
		created = append(created, page.Records...)
	}
	return created, nil
}

// UpdateRecords 批量更新（PATCH，只改提交的字段），批处理语义同CreateRecords
func (c *Client) UpdateRecords(ctx context.Context, table string, records []*model.AirtableRecord) ([]*model.AirtableRecord, error) {
	var updated []*model.AirtableRecord
	for _, chunk := range interfaces.ChunkSlice(records, c.cfg.BatchSize) {
		payload := writePayload{}
		for _, r := range chunk {
			payload.Records = append(payload.Records, writeRecord{ID: r.ID, Fields: r.Fields})
		}
		var page model.AirtableRecordPage
		if err := c.doJSON(ctx, http.MethodPatch, c.tableURL(table), payload, &page); err != nil {
			return updated, fmt.Errorf("批量更新记录失败（已更新%d条）: %w", len(updated), err)
		}
		updated = append(updated, page.Records...)
	}
	return updated, nil
}

// DeleteRecords 批量删除，批处理语义同CreateRecords
func (c *Client) DeleteRecords(ctx context.Context, table string, ids []string) error {
	deleted := 0
	for _, chunk := range interfaces.ChunkSlice(ids, c.cfg.BatchSize) {
		q := url.Values{}
		for _, id := range chunk {
			q.Add("records[]", id)
		}
		rawURL := c.tableURL(table) + "?" + q.Encode()
		if err := c.doJSON(ctx, http.MethodDelete, rawURL, nil, nil); err != nil {
			return fmt.Errorf("批量删除记录失败（已删除%d条）: %w", deleted, err)
		}
		deleted += len(chunk)
	}
	return nil
}

// escapeFormulaValue 公式字符串字面量转义（单引号）
func escapeFormulaValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

// FindRecordByUniqueField 服务端按唯一字段精确匹配，返回首条或nil
func (c *Client) FindRecordByUniqueField(ctx context.Context, table, field, value string) (*model.AirtableRecord, error) {
	page, err := c.ListRecords(ctx, table, model.AirtableListOptions{
		MaxRecords:      1,
		FilterByFormula: fmt.Sprintf("{%s} = '%s'", field, escapeFormulaValue(value)),
	})
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	return page.Records[0], nil
}

// UpsertRecords 按唯一字段upsert：先用OR公式分块批查已存在的键（每块一次往返，
// 而不是每条记录一次），按查询结果切分成创建/更新两组，两组批量写并行提交
// 缺唯一字段值的记录跳过并告警，不算错误
func (c *Client) UpsertRecords(ctx context.Context, table string, fieldsList []map[string]any, uniqueField string) (*model.AirtableUpsertResult, error) {
	var candidates []map[string]any
	var values []string
	for _, fields := range fieldsList {
		v, _ := fields[uniqueField].(string)
		if v == "" {
			c.logger.Warnf("upsert跳过缺少唯一字段[%s]的记录", uniqueField)
			continue
		}
		candidates = append(candidates, fields)
		values = append(values, v)
	}
	if len(candidates) == 0 {
		return &model.AirtableUpsertResult{}, nil
	}

	// 1. 批查existence：value -> 已存在记录ID
	existing := make(map[string]string, len(values))
	for _, chunk := range interfaces.ChunkSlice(values, lookupChunkSize) {
		clauses := make([]string, 0, len(chunk))
		for _, v := range chunk {
			clauses = append(clauses, fmt.Sprintf("{%s} = '%s'", uniqueField, escapeFormulaValue(v)))
		}
		formula := clauses[0]
		if len(clauses) > 1 {
			formula = "OR(" + strings.Join(clauses, ",") + ")"
		}
		err := c.ForEachPage(ctx, table, model.AirtableListOptions{FilterByFormula: formula}, func(records []*model.AirtableRecord) error {
			for _, r := range records {
				if v := r.Str(uniqueField); v != "" {
					existing[v] = r.ID
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("批量查询已存在记录失败: %w", err)
		}
	}

	// 2. 切分创建/更新
	var toCreate []map[string]any
	var toUpdate []*model.AirtableRecord
	for _, fields := range candidates {
		v, _ := fields[uniqueField].(string)
		if id, ok := existing[v]; ok {
			toUpdate = append(toUpdate, &model.AirtableRecord{ID: id, Fields: fields})
		} else {
			toCreate = append(toCreate, fields)
		}
	}

	// 3. 创建批与更新批并行提交（各自内部仍逐批限速）
	result := &model.AirtableUpsertResult{}
	var wg sync.WaitGroup
	var createErr, updateErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		if len(toCreate) > 0 {
			result.Created, createErr = c.CreateRecords(ctx, table, toCreate)
		}
	}()
	go func() {
		defer wg.Done()
		if len(toUpdate) > 0 {
			result.Updated, updateErr = c.UpdateRecords(ctx, table, toUpdate)
		}
	}()
	wg.Wait()
	if createErr != nil {
		return result, createErr
	}
	if updateErr != nil {
		return result, updateErr
	}

	c.logger.Infof("表[%s]upsert完成：创建%d条，更新%d条", table, len(result.Created), len(result.Updated))
	return result, nil
}
