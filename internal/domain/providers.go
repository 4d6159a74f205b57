package domain

// ProviderPreset describes an OpenAI-compatible chat-completion provider a
// client may configure its own key against.
type ProviderPreset struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Endpoint     string   `json:"endpoint"`
	Models       []string `json:"models"`
	DefaultModel string   `json:"defaultModel"`
	KeyFormat    string   `json:"keyFormat,omitempty"`
	Docs         string   `json:"docs,omitempty"`
}

// ProviderPresets returns the known providers in display order.
func ProviderPresets() []ProviderPreset {
	return []ProviderPreset{
		{
			ID:           "openai",
			Name:         "OpenAI",
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Models:       []string{"gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"},
			DefaultModel: "gpt-3.5-turbo",
			KeyFormat:    "sk-...",
			Docs:         "https://platform.openai.com/api-keys",
		},
		{
			ID:           "azure",
			Name:         "Azure OpenAI",
			Endpoint:     "https://YOUR-RESOURCE.openai.azure.com/openai/deployments/YOUR-DEPLOYMENT/chat/completions?api-version=2023-05-15",
			Models:       []string{"gpt-4", "gpt-35-turbo"},
			DefaultModel: "gpt-35-turbo",
			KeyFormat:    "YOUR-API-KEY",
			Docs:         "https://portal.azure.com",
		},
		{
			ID:           "tongyi",
			Name:         "通义千问",
			Endpoint:     "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
			Models:       []string{"qwen-turbo", "qwen-plus", "qwen-max"},
			DefaultModel: "qwen-turbo",
			KeyFormat:    "sk-...",
			Docs:         "https://dashscope.console.aliyun.com/apiKey",
		},
		{
			ID:           "wenxin",
			Name:         "文心一言",
			Endpoint:     "https://aip.baidubce.com/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/completions",
			Models:       []string{"ERNIE-Bot", "ERNIE-Bot-turbo"},
			DefaultModel: "ERNIE-Bot-turbo",
			KeyFormat:    "YOUR-API-KEY",
			Docs:         "https://console.bce.baidu.com/qianfan/ais/console/applicationConsole/application",
		},
		{
			ID:     "custom",
			Name:   "自定义",
			Models: []string{},
		},
	}
}
