package geminiservice

import "strings"

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	This is the core structure that tells Gemini how to format its JSON response
=================================================================================*/

// GeminiSchema defines the structure for "Controlled Generation" (Structured Output).
// It is sent as generationConfig.responseSchema and rendered into the prompt.
type GeminiSchema struct {
	// Type defines the data type (e.g., "OBJECT", "ARRAY", "STRING", "INTEGER").
	Type string `json:"type"`

	// Description explains the field's purpose to the AI, helping it generate better content.
	Description string `json:"description,omitempty"`

	// Properties maps field names to their child schemas (used when Type is "OBJECT").
	Properties map[string]*GeminiSchema `json:"properties,omitempty"`

	// Items defines the schema for elements within an array (used when Type is "ARRAY").
	Items *GeminiSchema `json:"items,omitempty"`

	// Required lists the field names that the AI MUST include in the response.
	Required []string `json:"required,omitempty"`

	// Enum lists valid specific string values for fields with restricted options.
	Enum []string `json:"enum,omitempty"`
}

// JSONSchema converts the Gemini (OpenAPI subset) schema into a draft-07 JSON
// Schema document usable by a generic validator.
func (s *GeminiSchema) JSONSchema() map[string]any {
	if s == nil {
		return map[string]any{}
	}

	out := map[string]any{"type": strings.ToLower(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, child := range s.Properties {
			props[name] = child.JSONSchema()
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

func str(desc string) *GeminiSchema {
	return &GeminiSchema{Type: "STRING", Description: desc}
}

func strList(desc string) *GeminiSchema {
	return &GeminiSchema{Type: "ARRAY", Description: desc, Items: &GeminiSchema{Type: "STRING"}}
}

// mealSchema is shared by breakfast, lunch and dinner.
func mealSchema(meal string) *GeminiSchema {
	return &GeminiSchema{
		Type:        "OBJECT",
		Description: "Rekomendasi menu untuk " + meal,
		Properties: map[string]*GeminiSchema{
			"menu": {
				Type:        "ARRAY",
				Description: "1 sampai 3 makanan dari database-food. id dan nama WAJIB disalin persis.",
				Items: &GeminiSchema{
					Type: "OBJECT",
					Properties: map[string]*GeminiSchema{
						"id":   {Type: "INTEGER", Description: "id makanan dari database-food"},
						"nama": str("foodName persis seperti di database-food"),
					},
					Required: []string{"id", "nama"},
				},
			},
			"alasan": str("Satu sampai dua kalimat: mengapa menu ini cocok untuk kebutuhan gizi ibu hari ini."),
		},
		Required: []string{"menu", "alasan"},
	}
}

/*
FoodRecommendationSchema describes the exact JSON structure returned by
GET /food-recommendation.
*/
var FoodRecommendationSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"recommendations": {
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"breakfast": mealSchema("sarapan"),
				"lunch":     mealSchema("makan siang"),
				"dinner":    mealSchema("makan malam"),
			},
			Required: []string{"breakfast", "lunch", "dinner"},
		},
		"summary": {
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"nutrisi_kurang":    strList("Nutrisi yang asupannya hari ini masih di bawah kebutuhan."),
				"nutrisi_terpenuhi": strList("Nutrisi yang kebutuhannya hari ini sudah terpenuhi."),
				"catatan":           str("Catatan singkat untuk ibu, maksimal tiga kalimat."),
			},
			Required: []string{"nutrisi_kurang", "nutrisi_terpenuhi", "catatan"},
		},
	},
	Required: []string{"recommendations", "summary"},
}

/*
ActivityRecommendationSchema describes the exact JSON structure returned by
GET /activity-recommendation.
*/
var ActivityRecommendationSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"today_recommendation": {
			Type:        "OBJECT",
			Description: "Aktivitas yang disarankan untuk hari ini.",
			Properties: map[string]*GeminiSchema{
				"aktivitas": {
					Type:        "ARRAY",
					Description: "2 sampai 4 aktivitas dari database-activity.",
					Items: &GeminiSchema{
						Type: "OBJECT",
						Properties: map[string]*GeminiSchema{
							"id":           {Type: "INTEGER", Description: "id aktivitas dari database-activity"},
							"nama":         str("activityName persis seperti di database-activity"),
							"durasi_menit": {Type: "INTEGER", Description: "Durasi yang disarankan dalam menit (5 sampai 60)"},
							"intensitas":   {Type: "STRING", Enum: []string{"ringan", "sedang"}},
							"alasan":       str("Satu kalimat: mengapa aktivitas ini aman dan bermanfaat hari ini."),
						},
						Required: []string{"id", "nama", "durasi_menit", "alasan"},
					},
				},
				"total_durasi_menit": {Type: "INTEGER", Description: "Jumlah durasi semua aktivitas yang disarankan"},
				"catatan":            str("Catatan singkat terkait aktivitas yang sudah dilakukan hari ini."),
			},
			Required: []string{"aktivitas", "total_durasi_menit"},
		},
		"trimester_specific": {
			Type:        "OBJECT",
			Description: "Panduan sesuai usia kehamilan pengguna.",
			Properties: map[string]*GeminiSchema{
				"trimester":  {Type: "INTEGER", Description: "Trimester saat ini (1, 2, atau 3)"},
				"fokus":      str("Fokus latihan pada trimester ini."),
				"dianjurkan": strList("Jenis gerakan atau aktivitas yang dianjurkan."),
				"dihindari":  strList("Jenis gerakan atau aktivitas yang sebaiknya dihindari."),
			},
			Required: []string{"trimester", "fokus", "dianjurkan", "dihindari"},
		},
		"health_considerations": {
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"peringatan":   strList("Peringatan berdasarkan kondisi medis, alergi, atau riwayat pengguna."),
				"tanda_bahaya": strList("Tanda yang mengharuskan ibu segera berhenti beraktivitas dan menghubungi tenaga kesehatan."),
			},
			Required: []string{"peringatan", "tanda_bahaya"},
		},
		"summary": {
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"aktivitas_hari_ini": str("Ringkasan aktivitas yang sudah tercatat hari ini."),
				"rekomendasi_utama":  str("Satu kalimat rekomendasi terpenting."),
				"catatan":            str("Catatan penutup yang menyemangati."),
			},
			Required: []string{"aktivitas_hari_ini", "rekomendasi_utama"},
		},
	},
	Required: []string{"today_recommendation", "trimester_specific", "health_considerations", "summary"},
}

/* =================================================================================
						PROMPT ENGINEERING & GUARDRAILS
=================================================================================*/

// AppDescription is always included in chat prompts so MediBot can explain the app.
const AppDescription = `PantauSiKecil adalah aplikasi AI yang membantu ibu hamil memantau kehamilannya.
Fitur utama:
- Pelacakan asupan makanan dan nutrisi harian (protein, asam folat, zat besi, kalsium, vitamin D, omega-3, serat, yodium, lemak, vitamin B, air).
- Kebutuhan gizi harian yang disesuaikan dengan trimester kehamilan.
- Pencatatan aktivitas fisik dan rekomendasi olahraga yang aman untuk ibu hamil.
- Rekomendasi menu makanan berbasis AI.
- Pengingat jadwal (kontrol kehamilan, minum vitamin) dan kontak darurat.
- MediBot, chatbot yang menjawab pertanyaan seputar kehamilan.`

// ChatPersona is the preamble for POST /chat.
const ChatPersona = `Kamu adalah Chat Bot bernama MediBot di aplikasi PantauSiKecil.
Kamu membantu ibu hamil dengan informasi kesehatan kehamilan, nutrisi, dan aktivitas fisik
berdasarkan data pengguna yang tersedia.

BAHASA OUTPUT:
GUNAKAN BAHASA INDONESIA YANG SOPAN, HANGAT, DAN MUDAH DIMENGERTI.

BATASAN DOMAIN (PENTING):
Kamu hanya asisten KESEHATAN KEHAMILAN dan penggunaan aplikasi PantauSiKecil.
Jika pertanyaan tidak berkaitan dengan kehamilan, kesehatan, nutrisi, aktivitas, atau aplikasi,
tolak dengan sopan dan arahkan kembali ke topik kehamilan.
Kamu bukan pengganti dokter atau bidan.`

// FoodPersona is the preamble for GET /food-recommendation.
const FoodPersona = `Kamu adalah ahli gizi klinis yang berspesialisasi pada nutrisi ibu hamil.
Tugasmu menyusun rekomendasi menu sarapan, makan siang, dan makan malam untuk hari ini.

ATURAN ANALISIS:
1. Bandingkan 'user_nutrition_summary' (asupan hari ini) dengan 'user_nutrition_need' (kebutuhan per trimester).
2. Prioritaskan makanan yang menutup kekurangan nutrisi terbesar, terutama asam folat, zat besi, kalsium, dan protein.
3. Perhatikan 'user_food_track': jangan mengulang makanan yang sudah dimakan hari ini.
4. Perhatikan alergi dan kondisi medis di 'user_profile'. JANGAN rekomendasikan makanan yang memicu alergi.
5. HANYA pilih makanan yang ada di 'database-food'. Salin id dan foodName persis.`

// ActivityPersona is the preamble for GET /activity-recommendation.
const ActivityPersona = `Kamu adalah pelatih kebugaran prenatal bersertifikat.
Tugasmu menyusun rekomendasi aktivitas fisik yang aman untuk ibu hamil hari ini.

ATURAN ANALISIS:
1. Tentukan trimester dari data kehamilan di 'user_profile' atau 'user_data'.
2. Perhatikan 'user_activity_today' dan 'user_activity_history' agar total aktivitas tetap wajar (umumnya 30 menit intensitas sedang per hari).
3. Perhatikan kondisi medis di 'user_profile'. Jika ada kondisi berisiko, sarankan aktivitas ringan saja dan konsultasi dengan tenaga kesehatan.
4. Perhatikan asupan di 'user_food_track': ingatkan makan ringan sebelum aktivitas jika asupan hari ini masih sedikit.
5. HANYA pilih aktivitas yang ada di 'database-activity'. Salin id dan activityName persis.`

// ChatRules are the answer formatting rules for chat.
const ChatRules = `- Jawab langsung pertanyaan pengguna dalam 1 sampai 4 paragraf pendek.
- Gunakan data pengguna di atas bila relevan (trimester, asupan, aktivitas).
- Jangan menampilkan data mentah JSON atau id internal.
- Jika ada tanda bahaya (perdarahan, nyeri hebat, pusing berat, gerakan janin berkurang), sarankan segera ke fasilitas kesehatan.`

// structuredRules introduces the JSON schema for the recommendation use cases.
const structuredRules = `- Kembalikan HANYA satu objek JSON yang sesuai dengan skema di bawah.
- JANGAN tambahkan markdown, code fence, penjelasan, atau teks lain sebelum maupun sesudah JSON.
- Semua teks di dalam JSON menggunakan Bahasa Indonesia.
- Jika data tidak lengkap, tetap isi semua field wajib dengan perkiraan terbaik dan jelaskan di 'catatan'.

SKEMA JSON:
`

// Section markers shared by every composed prompt.
const (
	SectionAppDescription = "=== DESKRIPSI APLIKASI ==="
	SectionUserContext    = "=== DATA PENGGUNA ==="
	SectionRules          = "=== ATURAN OUTPUT ==="
	SectionQuestion       = "Pertanyaan:"
)
