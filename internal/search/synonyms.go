package search

// defaultSynonyms maps a canonical token to the alternate tokens and phrases
// that should match it in product names. The table is not bidirectional by
// construction: Matches checks both directions explicitly. Keys and values
// are lowercase and accent-free, the same form Normalize produces.
var defaultSynonyms = map[string][]string{
	// Storage
	"ssd":   {"solid", "state", "drive", "disco", "hd"},
	"hd":    {"hard", "drive", "disco"},
	"m2":    {"ngff", "nvme", "pcie", "msata"},
	"sata":  {"serial", "ata"},
	"caddy": {"suporte", "adaptador hd", "bay"},

	// Memory
	"memoria": {"ram", "ddr", "dimm", "so-dimm", "not", "pc"},
	"ddr2":    {"pc2"},
	"ddr3":    {"pc3"},
	"ddr4":    {"pc4"},
	"ddr5":    {"pc5"},

	// Boards and adapters
	"placa":     {"board", "mother", "mae", "card"},
	"rede":      {"network", "ethernet", "lan", "wifi"},
	"adaptador": {"adapter", "converter", "dongle"},
	"conversor": {"converter", "adapter"},
	"video":     {"vga", "graphics", "grafica", "gpu"},

	// Cables
	"cabo":        {"wire", "fio"},
	"hdmi":        {"high-definition", "multimidia"},
	"displayport": {"dp"},
	"dvi":         {"digital video interface"},
	"vga":         {"video graphics array"},
	"p2":          {"3.5mm", "aux"},
	"p10":         {"6.35mm", "jack"},
	"rj45":        {"ethernet", "lan"},
	"usb":         {"universal serial bus"},

	// Power
	"fonte":      {"power", "supply", "alimentacao", "charger", "adaptador energia"},
	"carregador": {"charger", "fonte", "power"},
	"bateria":    {"battery", "pilha"},

	// Peripherals
	"mouse":       {"rato"},
	"teclado":     {"keyboard"},
	"headset":     {"fone", "headphone", "auricular", "fone gamer"},
	"fone":        {"earphone", "headphone"},
	"microfone":   {"mic", "microphone"},
	"webcam":      {"camera", "web", "cam"},
	"monitor":     {"display", "tela"},
	"alto-falante": {"speaker", "caixa", "som"},

	// Gaming
	"controle": {"joystick", "gamepad", "controlador"},
	"gamer":    {"gaming", "game"},

	// Smart devices
	"smartwatch": {"relogio", "watch", "wearable"},
	"alexa":      {"echo", "dot"},
	"lampada":    {"light", "led", "bulb"},
	"tomada":     {"plug", "socket"},
	"zigbee":     {"hub zigbee"},
	"wifi":       {"wireless", "sem fio"},
	"bluetooth":  {"bt"},

	// Misc
	"hub":        {"concentrador"},
	"switch":     {"comutador"},
	"scanner":    {"digitalizador"},
	"impressora": {"printer"},
	"case":       {"gabinete", "estojo", "caixa"},

	// Capacities
	"16gb":  {"16 gb", "16"},
	"32gb":  {"32 gb", "32"},
	"64gb":  {"64 gb", "64"},
	"128gb": {"128 gb", "128"},
	"256gb": {"256 gb", "256"},
	"512gb": {"512 gb", "512"},
	"1tb":   {"1 tb", "1000 gb", "tera"},
	"2tb":   {"2 tb", "2000 gb"},
	"960gb": {"960 gb"},

	// Form factors
	"2.5":       {"2,5", "duas cinco", "dois cinco"},
	"3.5":       {"3,5", "tres cinco"},
	"tipo-c":    {"type-c", "usb-c", "typec"},
	"lightning": {"iphone conector", "apple cabo"},
}
