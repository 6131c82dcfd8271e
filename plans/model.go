package plans

// Plan is the admin-editable reference row for a tier. The access resolver
// reads only MaxWorkOrdersPerMonth from here; equipment/client ceilings and
// feature flags are fixed in code per plan code.
type Plan struct {
	ID                    int    `json:"id"`
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	MaxWorkOrdersPerMonth int    `json:"max_work_orders_per_month"`
	MaxEquipments         int    `json:"max_equipments"`
	AiEnabled             bool   `json:"ai_enabled"`
	PdfEnabled            bool   `json:"pdf_enabled"`
	QrEnabled             bool   `json:"qr_enabled"`
}
