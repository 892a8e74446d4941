package repo

// QueryOptions 列表分页参数，通常由 HTTP 查询参数或命令行参数填充。
type QueryOptions struct {
	Page    int               `json:"page"`
	Size    int               `json:"size"`
	Skip    *int              `json:"skip,omitempty"`
	Order   string            `json:"order"` // 例如 "score:desc,id"
	Filters map[string]string `json:"filters"`
}
