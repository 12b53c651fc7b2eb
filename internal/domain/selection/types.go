package selection

// Snapshot keys. They match the keys the browser front-end used, so a
// snapshot exported from a browser can be imported unchanged.
const (
	LiveKey  = "dwpnxt-landscape-selections"
	FinalKey = "dwpnxt-landscape-final"
)

// ToolSelection is the combined catalog and custom tools chosen for one category
type ToolSelection struct {
	Category      string   `json:"category"`
	SelectedTools []string `json:"selectedTools"`
	CustomTools   []string `json:"customTools"`
}

// Count is the number of tools chosen, catalog and custom together
func (s ToolSelection) Count() int {
	return len(s.SelectedTools) + len(s.CustomTools)
}

// Clone returns a deep copy that shares no slices with s
func (s ToolSelection) Clone() ToolSelection {
	return ToolSelection{
		Category:      s.Category,
		SelectedTools: cloneStrings(s.SelectedTools),
		CustomTools:   cloneStrings(s.CustomTools),
	}
}

// Listener receives the full selection of a category after every change
type Listener interface {
	OnSelectionChange(sel ToolSelection)
}

// Backend is durable key-value storage for snapshots
type Backend interface {
	// Get returns the stored value and whether the key exists
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneAll(in []ToolSelection) []ToolSelection {
	out := make([]ToolSelection, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
