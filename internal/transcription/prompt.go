package transcription

import "fmt"

const thaiPrompt = `คุณคือผู้ช่วยประชุม (meeting-assistant) มีหน้าที่อ่านบันทึกการประชุมทั้งหมด แล้วสร้าง:
รายการหัวข้ออภิปรายหลัก (bullet points)
รายการงานที่ได้รับมอบหมายในรูปแบบ "ผู้รับมอบหมาย → งาน → กำหนดเวลา (ถ้ามี)"
สำหรับเป้าหมาย การตัดสินใจ หรือขั้นตอนถัดไป
ให้ผลลัพธ์ออกมาใน 3 ส่วน ชื่อว่า:
• "%s"
• "%s"
• "%s"
แต่ละบูลเล็ตรายการไม่เกินหนึ่งประโยค และใช้ข้อมูลจากบันทึกการประชุมให้ครบถ้วน`

const englishPrompt = `You are a meeting assistant. Read the whole meeting transcript and produce:
a list of the main discussion topics (bullet points),
a list of assigned tasks in the form "assignee → task → deadline (if any)",
the goals, decisions and next steps.
Return exactly 3 sections named:
• "%s"
• "%s"
• "%s"
Keep every bullet to one sentence and do not leave out information from the transcript.%s`

const userPrefix = "Please summarize the following transcription:\n"

var markers = map[string][3]string{
	"th": {"หัวข้ออภิปราย", "งานที่ได้รับมอบหมาย", "เป้าหมายและการตัดสินใจ"},
	"en": {"Discussion Topics", "Assigned Tasks", "Goals and Decisions"},
}

// SectionMarkers are the three headings every summary in language contains.
// Languages without a dedicated prompt use the English headings.
func SectionMarkers(language string) [3]string {
	if m, ok := markers[language]; ok {
		return m
	}
	return markers["en"]
}

// SystemPrompt builds the fixed summary instruction for language.
func SystemPrompt(language string) string {
	m := SectionMarkers(language)
	switch language {
	case "th":
		return fmt.Sprintf(thaiPrompt, m[0], m[1], m[2])
	case "en", "":
		return fmt.Sprintf(englishPrompt, m[0], m[1], m[2], "")
	default:
		return fmt.Sprintf(englishPrompt, m[0], m[1], m[2], "\nWrite the bullet points in the language with ISO code \""+language+"\".")
	}
}

const teamReportPrompt = `Extract the event information from the meeting transcript.
Respond with a single JSON object of the form:
{"team_name": string, "events": [{"progress": string, "blocker": string, "next_step": string}]}
Use an empty string when a field is not mentioned.`
