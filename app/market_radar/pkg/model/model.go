package model

// SearchHit 单条搜索命中，URL 为去重键
type SearchHit struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EntityBundle 从单个页面提炼出的结构化实体
type EntityBundle struct {
	Competitors    []string `json:"competitors"`
	PricingModels  []string `json:"pricing_models"`
	EmergingThemes []string `json:"emerging_themes"`
	KeyPoints      []string `json:"key_points"` // 最多 5 条
}

// EmptyEntityBundle 返回四个字段均为空切片的实体集合
func EmptyEntityBundle() EntityBundle {
	return EntityBundle{
		Competitors:    []string{},
		PricingModels:  []string{},
		EmergingThemes: []string{},
		KeyPoints:      []string{},
	}
}

// ImpactLevel 影响等级
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "High"
	ImpactMedium ImpactLevel = "Medium"
	ImpactLow    ImpactLevel = "Low"
)

// ImpactAssessment 单个事件的影响评估
type ImpactAssessment struct {
	ImpactLevel ImpactLevel `json:"impact_level"`
	Score       int         `json:"score"` // 0-100
	Why         []string    `json:"why"`
	Actions     []string    `json:"actions"`
}

// ImpactRadarEntry 报告中的影响雷达条目
type ImpactRadarEntry struct {
	Event string `json:"event"`
	ImpactAssessment
	URL string `json:"url"`
}

// NinetyDayPlan 90 天分阶段行动计划
type NinetyDayPlan struct {
	Days0To30  []string `json:"0_30"`
	Days30To60 []string `json:"30_60"`
	Days60To90 []string `json:"60_90"`
}

// Report 最终的市场情报报告
type Report struct {
	Summary       string             `json:"summary"`
	Drivers       []string           `json:"drivers"`
	Competitors   []string           `json:"competitors"`
	ImpactRadar   []ImpactRadarEntry `json:"impact_radar"`
	Opportunities []string           `json:"opportunities"`
	Risks         []string           `json:"risks"`
	NinetyDayPlan NinetyDayPlan      `json:"90_day_plan"`
	Sources       []string           `json:"sources"`
}

// Signals 事件附带的行业信号
type Signals struct {
	Industry    string   `json:"industry"`
	Competitors []string `json:"competitors"`
	Themes      []string `json:"themes"`
}

// Event 待评估的候选事件
type Event struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Signals   Signals  `json:"signals"`
	KeyPoints []string `json:"key_points"`
}

// ImpactContext 影响评估的上下文
type ImpactContext struct {
	Industry string `json:"industry"`
	Focus    string `json:"focus"`
}

// SynthesisInput 报告合成阶段的输入
type SynthesisInput struct {
	Context     string             `json:"context"`
	Competitors []string           `json:"competitors"`
	Impacts     []ImpactAssessment `json:"impacts"`
	Sources     []string           `json:"sources"`
}
