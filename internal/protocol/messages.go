package protocol

import "waterbarons/internal/engine"

// Message types: Server → Client
const (
	MsgLobbyUpdate  = "lobby_update"
	MsgGameState    = "game_state"
	MsgPlayerState  = "player_state"
	MsgDraftPrompt  = "draft_prompt"
	MsgActionPrompt = "action_prompt"
	MsgSalesPrompt  = "sales_prompt"
	MsgActionResult = "action_result"
	MsgLog          = "log"
	MsgGameOver     = "game_over"
	MsgError        = "error"
)

// Message types: Client → Server
const (
	MsgJoin      = "join"
	MsgReady     = "ready"
	MsgStartGame = "start_game"

	MsgDraftPick         = "draft_pick"
	MsgBuildFacility     = "build_facility"
	MsgProduceWater      = "produce_water"
	MsgBuildDistribution = "build_distribution"
	MsgAddUpgrade        = "add_upgrade"
	MsgSpeculate         = "speculate"
	MsgBuyOption         = "buy_option"
	MsgSpinMarketing     = "spin_marketing"
	MsgPass              = "pass"
	MsgEndAction         = "end_action"
	MsgSales             = "sales"
)

// LobbyUpdate is sent to all clients when lobby state changes.
type LobbyUpdate struct {
	TableID string        `json:"table_id"`
	Players []LobbyPlayer `json:"players"`
	Started bool          `json:"started"`
}

type LobbyPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// JoinMsg is sent by a player to join the table.
type JoinMsg struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// ReadyMsg is sent by a player to toggle ready state.
type ReadyMsg struct {
	Ready bool `json:"ready"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// DraftPrompt asks the current picker for a whim. Reply with DraftPickMsg.
type DraftPrompt struct {
	Pick    int           `json:"pick"`
	Options []engine.Whim `json:"options"`
}

// DraftPickMsg chooses an option index; -1 opts out.
type DraftPickMsg struct {
	Index int `json:"index"`
}

// ActionInfo names one ops action.
type ActionInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ActionPrompt opens one action slot. The player sends action messages
// until one succeeds or they send end_action.
type ActionPrompt struct {
	Action  int          `json:"action"`
	Of      int          `json:"of"`
	Actions []ActionInfo `json:"actions"`
}

// BuildMsg is the payload of build_facility and build_distribution.
type BuildMsg struct {
	CardID string `json:"card_id"`
	Slot   int    `json:"slot"`
}

// ProduceMsg is the payload of produce_water.
type ProduceMsg struct {
	Slot int `json:"slot"`
}

// UpgradeMsg is the payload of add_upgrade. Target is facility, route or
// tech.
type UpgradeMsg struct {
	CardID string `json:"card_id"`
	Target string `json:"target"`
	Slot   int    `json:"slot"`
}

// SpeculateMsg is the payload of speculate.
type SpeculateMsg struct {
	Track string `json:"track"`
	Long  bool   `json:"long"`
}

// OptionMsg is the payload of buy_option.
type OptionMsg struct {
	Event string `json:"event"`
}

// MarketingMsg is the payload of spin_marketing.
type MarketingMsg struct {
	Segment string `json:"segment"`
	Up      bool   `json:"up"`
}

// ActionResult reports the outcome of one action message.
type ActionResult struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// SalesPrompt asks a player for their sales this round.
type SalesPrompt struct {
	Batches       []engine.WaterBatch        `json:"batches"`
	Opportunities []engine.DemandOpportunity `json:"opportunities"`
	Levels        map[engine.Track]int       `json:"levels"`
}

// SalesMsg answers a SalesPrompt.
type SalesMsg struct {
	Sales []engine.Sale `json:"sales"`
}

// LogMsg carries new audit log lines.
type LogMsg struct {
	Lines []string `json:"lines"`
}

// GameOver carries final scores.
type GameOver struct {
	Scores []engine.ScoreEntry `json:"scores"`
}
