package render

import "fmt"

// Plain-text confirmations and errors. Strings mirror the bot's zh-TW voice.

func AskForMemoText(cardName string) string {
	return fmt.Sprintf("請輸入關於「%s」的備忘錄：", cardName)
}

func AskForFieldText(cardName, fieldLabel string) string {
	return fmt.Sprintf("請輸入「%s」的新「%s」：", cardName, fieldLabel)
}

func CardNotFoundText() string {
	return "找不到該名片資料。"
}

func MemoUpdatedText() string {
	return "備忘錄已成功更新！"
}

func MemoUpdateFailedText() string {
	return "新增備忘錄時發生錯誤，請稍後再試。"
}

func FieldUpdatedText() string {
	return "資料已成功更新！"
}

func FieldUpdatedNotShownText() string {
	return "資料更新成功，但無法立即顯示。"
}

func FieldUpdateFailedText() string {
	return "更新資料時發生錯誤，請稍後再試。"
}

func CardCountText(count int) string {
	return fmt.Sprintf("總共有 %d 張名片資料。", count)
}

func DuplicatesRemovedText() string {
	return "Redundant data removal complete."
}

func StatsText(total, thisMonth int, topCompany string) string {
	return fmt.Sprintf(`📊 名片統計資訊

📇 總名片數：%d 張
📅 本月新增：%d 張
🏢 最常合作公司：%s`, total, thisMonth, topCompany)
}

func NoCardsText() string {
	return "您尚未建立任何名片。"
}

func QueryNoMatchText() string {
	return "查無相關名片資料。"
}

func QueryFailedText() string {
	return "處理您的查詢時發生錯誤，請稍後再試。"
}

func ExtractFailedText(diagnostic string) string {
	return fmt.Sprintf("無法解析這張名片，請再試一次。 錯誤資訊: %s", diagnostic)
}

func CardExistsText() string {
	return "這個名片已經存在資料庫中。"
}

func CardSavedText() string {
	return "名片資料已經成功加入資料庫。"
}

func CardSaveFailedText() string {
	return "儲存名片時發生錯誤。"
}

func QRCodeFailedText() string {
	return "生成 QR Code 時發生錯誤，請稍後再試。"
}

func RequestFailedText() string {
	return "處理您的請求時發生錯誤，請稍後再試。"
}

// QRCodeUsageText explains how to import the generated contact QR code.
func QRCodeUsageText(name string) string {
	return fmt.Sprintf(`已為「%s」生成聯絡人 QR Code！

📱 使用方式：
1. 用手機相機 App 掃描上方的 QR Code
2. 系統會自動識別聯絡人資訊
3. 點擊「加入聯絡人」即可匯入

✅ 支援 iPhone 和 Android 所有智慧型手機`, name)
}
