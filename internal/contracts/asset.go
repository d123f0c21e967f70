package contracts

// AssetClass is the playbook family an asset belongs to.
// ⭐ SSOT: 자산 클래스는 여기서만 정의
type AssetClass string

const (
	ClassGold    AssetClass = "gold"
	ClassIndex   AssetClass = "index"
	ClassCrypto  AssetClass = "crypto"
	ClassFX      AssetClass = "fx"
	ClassGeneric AssetClass = "generic"
)

// Asset is one tradable instrument in the active universe.
type Asset struct {
	ID     string     `json:"id"`
	Symbol string     `json:"symbol"`
	Name   string     `json:"name"`
	Class  AssetClass `json:"class"`
	Active bool       `json:"active"`
}

// ValidClass reports whether s is a known asset class
func ValidClass(s string) bool {
	switch AssetClass(s) {
	case ClassGold, ClassIndex, ClassCrypto, ClassFX, ClassGeneric:
		return true
	}
	return false
}
