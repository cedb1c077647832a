package lessonplan

import "github.com/pakarguru/modulajar/internal/llm"

func str(desc string) map[string]any {
	s := map[string]any{"type": "string"}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func strList(desc string) map[string]any {
	s := map[string]any{"type": "array", "items": str("")}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   req,
	}
}

func list(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

const principleHint = "Pilih: Berkesadaran, Bermakna, atau Mengembirakan"

var learningStepSchema = object(map[string]any{
	"meetingNo":      map[string]any{"type": "integer"},
	"intro":          strList("Micro-steps kegiatan awal"),
	"introPrinciple": str(principleHint),
	"core": object(map[string]any{
		"memahami":     strList("Micro-steps Memahami"),
		"mengaplikasi": strList("Micro-steps Mengaplikasi"),
		"merefleksi":   strList("Micro-steps Merefleksi"),
	}, "memahami", "mengaplikasi", "merefleksi"),
	"corePrinciple":    str(principleHint),
	"closing":          strList("Micro-steps kegiatan penutup"),
	"closingPrinciple": str(principleHint),
}, "meetingNo", "intro", "introPrinciple", "core", "corePrinciple", "closing", "closingPrinciple")

// PlanSchema is the lesson plan without attachments or approval.
var PlanSchema = &llm.Schema{
	Name:        "lesson-plan",
	Description: "Modul Ajar: identitas, desain pembelajaran, langkah per pertemuan, refleksi",
	Definition: object(map[string]any{
		"identitySection": object(map[string]any{
			"schoolName":     str(""),
			"subject":        str(""),
			"grade":          str(""),
			"semester":       str(""),
			"timeAllocation": str(""),
			"meetingCount":   str(""),
			"topic":          str(""),
		}, "schoolName", "subject", "topic"),
		"initialAssessment": str(""),
		"graduateProfile":   strList("Hanya nama dimensi, tanpa penjelasan"),
		"design": object(map[string]any{
			"objectives":          strList(""),
			"pedagogicalPractice": str("Satu metode dan penjelasan singkat"),
			"partnership":         str(""),
			"environment":         str(""),
			"digital":             str(""),
		}, "objectives", "pedagogicalPractice", "environment"),
		"learningExperience": list(learningStepSchema),
		"reflection": object(map[string]any{
			"teacher": strList(""),
			"student": strList(""),
		}, "teacher", "student"),
	}, "identitySection", "design", "learningExperience", "reflection"),
}

// MaterialsSchema is the reading material attachment.
var MaterialsSchema = &llm.Schema{
	Name:        "materials",
	Description: "Materi ajar untuk murid dengan tabel ringkasan dan glosarium",
	Definition: object(map[string]any{
		"judul":    str(""),
		"pemantik": str(""),
		"subTopik": strList(""),
		"konsepInti": object(map[string]any{
			"definisi":           str(""),
			"penjelasanBertahap": strList("Uraian materi/konsep, bukan langkah kerja"),
			"tabelVisual": object(map[string]any{
				"headers": strList("Judul kolom tabel"),
				"rows": map[string]any{
					"type":        "array",
					"items":       strList(""),
					"description": "Baris data, setiap row adalah array string",
				},
			}, "headers", "rows"),
			"contohKonkret": str(""),
		}, "definisi", "penjelasanBertahap", "tabelVisual", "contohKonkret"),
		"trivia": str(""),
		"glosarium": list(object(map[string]any{
			"istilah":  str(""),
			"definisi": str(""),
		}, "istilah", "definisi")),
	}, "judul", "pemantik", "subTopik", "konsepInti", "trivia", "glosarium"),
}

func activitySchema() map[string]any {
	return object(map[string]any{
		"content":      str(""),
		"activityType": str("Teks | Tabel | ListSoal | Diskusi"),
	}, "content", "activityType")
}

// LKPDSchema is the student worksheet attachment.
var LKPDSchema = &llm.Schema{
	Name:        "worksheet",
	Description: "Lembar kerja murid dengan tiga level aktivitas",
	Definition: object(map[string]any{
		"title":        str(""),
		"objectives":   str(""),
		"instructions": strList("Langkah teknis pengerjaan"),
		"stimulus":     str(""),
		"activities": object(map[string]any{
			"level1": activitySchema(),
			"level2": activitySchema(),
			"level3": activitySchema(),
		}, "level1", "level2", "level3"),
		"reflection": strList(""),
	}, "title", "objectives", "instructions", "stimulus", "activities", "reflection"),
}

func levelsSchema(extra map[string]any, required ...string) map[string]any {
	props := map[string]any{
		"needsGuidance": str(""),
		"basic":         str(""),
		"proficient":    str(""),
		"advanced":      str(""),
	}
	for k, v := range extra {
		props[k] = v
	}
	return object(props, append(required, "needsGuidance", "basic", "proficient", "advanced")...)
}

// AssessmentSchema is the assessment attachment.
var AssessmentSchema = &llm.Schema{
	Name:        "assessment",
	Description: "KKTP, penilaian formatif, kisi-kisi sumatif, dan program intervensi",
	Definition: object(map[string]any{
		"kktp": list(levelsSchema(map[string]any{"criteria": str("")}, "criteria")),
		"formative": object(map[string]any{
			"checklist": list(object(map[string]any{
				"aspect":    str(""),
				"indicator": str(""),
			}, "aspect", "indicator")),
			"feedbackGuide": object(map[string]any{
				"clarification": str(""),
				"appreciation":  str(""),
				"suggestion":    str(""),
			}, "clarification", "appreciation", "suggestion"),
		}, "checklist", "feedbackGuide"),
		"summative": object(map[string]any{
			"grid": list(object(map[string]any{
				"indicator": str(""),
				"level":     str(""),
				"technique": str(""),
			}, "indicator", "level", "technique")),
		}, "grid"),
		"intervention": levelsSchema(nil),
	}, "kktp", "formative", "summative", "intervention"),
}

// QuestionBankSchema is the question bank attachment.
var QuestionBankSchema = &llm.Schema{
	Name:        "question-bank",
	Description: "Bank soal dengan kunci jawaban",
	Definition: object(map[string]any{
		"items": list(object(map[string]any{
			"number":   map[string]any{"type": "number"},
			"type":     str(""),
			"question": str(""),
			"stimulus": str(""),
			"options":  strList(""),
			"matchingPairs": list(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"left":  str(""),
					"right": str(""),
				},
			}),
			"answerKey": str(""),
		}, "number", "type", "question", "answerKey")),
	}, "items"),
}
