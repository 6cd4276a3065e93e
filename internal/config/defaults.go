package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath       = "storage.db"
	DefaultMaxOpenConns = 1

	DefaultAIModel           = "gemini-2.0-flash"
	DefaultAIImageModel      = "imagen-3.0-generate-002"
	DefaultAITemperature     = 1.0
	DefaultAITimeout         = 2 * time.Minute
	DefaultVisionTimeout     = 15 * time.Second // covers image fetch + vision call
	DefaultMaxToolIterations = 3

	DefaultSearchBaseURL = "https://google.serper.dev"
	DefaultSearchTimeout = 10 * time.Second

	DefaultDailyLimit     = 20
	DefaultTimezoneOffset = 8 // Hong Kong, UTC+8
	DefaultQuotaFailOpen  = true
)

// DefaultMessages holds the stock user-facing sentences.
var DefaultMessages = MessagesConfig{
	Welcome: "哈囉👋我係吹水群嘅AI小助手！tag我（@botname）就可以同我傾偈，打 /help 睇下我識做咩。",
	Help: `我識做嘅嘢：
/summarize - 總結全日對話
/summarize_morning /summarize_afternoon /summarize_night - 分時段總結
/summarize_last_hour /summarize_last_3_hours - 總結最近嘅對話
/summarize_user @username - 總結某位用戶今日講咗啲咩
/golden_quote_king - 選出今日金句王
/compliment - 回覆一個訊息，吹奏嗰位用戶
/diu - 回覆一個訊息，屌嗰位用戶（純屬娛樂）
/love - 回覆一個訊息，同嗰位用戶講土味情話
/apologize - 回覆一個訊息，代你道歉
/countdown YYYY-MM-DD 事件 - 倒數日子
/ask 問題 - 問我問題（識上網搵資料）
/image 描述 - 生成圖片
直接tag我（@botname）或者回覆我就可以同我傾偈💬`,
	Waiting:          "等一等，我諗緊嘢… ⏳",
	Thinking:         "諗緊點答… ⏳",
	GeneralError:     "系統想方加(出錯)，好對唔住",
	TimeoutError:     "諗得太耐，個腦過熱🥵一陣再試過",
	EmptyReply:       "我個腦hang咗機，一陣再試過🙏",
	StoreReadError:   "哎呀，讀取對話紀錄時出錯！請稍後再試。",
	StoreWriteError:  "哎呀，儲存訊息時出錯！請稍後再試。",
	QuotaExhausted:   "今日AI額度用晒喇（%d/%d）🙏聽日再嚟傾過啦！",
	EmptyWindow:      "（最近一個鐘冇人講過嘢）",
	NoMessages:       "No messages to summarize for %s in this chat!",
	ComplimentHint:   "請回覆某個用戶嘅訊息或圖片，再用 /compliment 去吹奏佢！",
	RoastHint:        "請回覆某個用戶嘅訊息，再用 /diu 來俾佢一啲搞笑嘅『懲罰』！😜",
	NoContentHint:    "請回覆一個有文字或者有圖片嘅訊息啦！",
	SummarizeUsage:   "請用格式 /summarize_user @username，例如 /summarize_user @john_doe",
	AskUsage:         "請喺 /ask 後面寫低你嘅問題",
	ImageUsage:       "請喺 /image 後面寫低你想要嘅圖",
	CountdownUsage:   "請用格式 /countdown YYYY-MM-DD 事件名",
	ToolLoopCap:      "條問題太深奧，簡化啲再問過🙏",
	ImageFetchError:  "下載唔到張圖，請再試一次",
	ImageLookError:   "系統分析唔到張圖，好對唔住",
	LoveFallback:     "哎呀，情話生成失敗，愛你唔使講😜",
	ApologyFallback:  "哎呀，道歉失敗，唔好打我🙏",
	RoastFallback:    "無氣diu，唔好diu我🙏",
	CountdownFailure: "錯撚曬！",
}

// DefaultSchedulerTasks enables the stock maintenance schedule.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},  // 04:00 daily
	"usage_prune":     {Enabled: true, Schedule: "0 30 4 * * *"}, // 04:30 daily, after maintenance
}
