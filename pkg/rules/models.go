package rules

import (
	"bytes"

	"github.com/walteh/fixrc/pkg/rule"
)

// Generated service/model naming repairs. The scaffolding generator
// derived class names straight from hyphenated and snake_case file
// names, which is not valid TypeScript; these tables map every known
// bad spelling to the Prisma model naming.

// classRename is one generated-name repair: the literal spellings the
// generator emitted and the identifiers they should have been.
type classRename struct {
	badClass  string // e.g. "Inventory-itemsService"
	goodClass string // e.g. "InventoryItemService"
	badConst  string // e.g. "inventory-itemsService"
	goodConst string // e.g. "inventoryItemService"
}

var classRenames = []classRename{
	{"Inventory-itemsService", "InventoryItemService", "inventory-itemsService", "inventoryItemService"},
	{"Inventory-adjustmentsService", "InventoryAdjustmentService", "inventory-adjustmentsService", "inventoryAdjustmentService"},
	{"Inventory-movementsService", "InventoryMovementService", "inventory-movementsService", "inventoryMovementService"},
	{"Stock-locationsService", "StockLocationService", "stock-locationsService", "stockLocationService"},
	{"Stock-transferService", "StockTransferService", "stock-transferService", "stockTransferService"},
	{"Wallet-transactionService", "WalletTransactionService", "wallet-transactionService", "walletTransactionService"},
	{"Store-creditService", "StoreCreditService", "store-creditService", "storeCreditService"},
	{"Flash-saleService", "FlashSaleService", "flash-saleService", "flashSaleService"},
	{"Gift-cardService", "GiftCardService", "gift-cardService", "giftCardService"},
}

// modelRenames maps snake_case model spellings to the Prisma client
// accessor names. Longest-first so the Service-suffixed spellings win
// over their prefixes.
var modelRenames = [][2]string{
	{"inventory_itemsService", "inventoryItemService"},
	{"inventory_adjustmentsService", "inventoryAdjustmentService"},
	{"inventory_movementsService", "inventoryMovementService"},
	{"stock_locationsService", "stockLocationService"},
	{"inventory_items", "InventoryItem"},
	{"inventory_adjustments", "InventoryAdjustment"},
	{"inventory_movements", "InventoryMovement"},
	{"stock_locations", "StockLocation"},
	{"storecredit", "storeCredit"},
}

// classRenameEdits repairs hyphenated class and instance names.
func classRenameEdits(path string, content []byte) ([]rule.Edit, error) {
	var pairs [][2]string
	for _, r := range classRenames {
		pairs = append(pairs, [2]string{r.badClass, r.goodClass}, [2]string{r.badConst, r.goodConst})
	}
	return literalEdits(content, pairs), nil
}

// modelRenameEdits repairs snake_case model references.
func modelRenameEdits(path string, content []byte) ([]rule.Edit, error) {
	return literalEdits(content, modelRenames), nil
}

// literalEdits turns a table of literal replacements into edits,
// honoring table order: an occurrence overlapping an earlier edit is
// skipped rather than double-applied.
func literalEdits(content []byte, pairs [][2]string) []rule.Edit {
	var edits []rule.Edit
	for _, p := range pairs {
		old := []byte(p[0])
		for i := 0; i+len(old) <= len(content); {
			j := bytes.Index(content[i:], old)
			if j < 0 {
				break
			}
			at := i + j
			i = at + len(old)
			if overlapsAny(edits, at, at+len(old)) {
				continue
			}
			edits = append(edits, rule.Edit{Start: at, End: at + len(old), Text: p[1]})
		}
	}
	return edits
}

func overlapsAny(edits []rule.Edit, start, end int) bool {
	for _, e := range edits {
		if start < e.End && end > e.Start {
			return true
		}
	}
	return false
}
