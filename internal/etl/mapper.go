package etl

import (
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/shopgraph/internal/data/source"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

// MapRow turns one source row into graph writes. It is pure: the output only
// depends on role and row. A row that cannot be mapped completely yields an
// error and no instructions.
func MapRow(role Role, row source.Row) ([]Instruction, error) {
	switch role {
	case RoleCustomers:
		return mapEntity(graphschema.LabelCustomer, "Customer", row)
	case RoleCategories:
		return mapEntity(graphschema.LabelCategory, "Category", row)
	case RoleProducts:
		return mapProduct(row)
	case RoleOrders:
		return mapOrder(row)
	case RoleOrderItems:
		return mapOrderItem(row)
	case RoleEvents:
		return mapEvent(row)
	default:
		return nil, pkgerrors.Newf(pkgerrors.KindSchemaMismatch, "etl.map", "unknown table role %q", role)
	}
}

func mapEntity(label graphschema.Label, entity string, row source.Row) ([]Instruction, error) {
	id, ok := keyOf(row, "id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, entity, "", "id is null")
	}
	return []Instruction{UpsertNode(label, id, attrsExcept(row, "id"))}, nil
}

func mapProduct(row source.Row) ([]Instruction, error) {
	id, ok := keyOf(row, "id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Product", "", "id is null")
	}
	categoryID, ok := keyOf(row, "category_id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Product", id, "category_id is null")
	}
	price, err := nonNegative(row["price"], "Product", id, "price")
	if err != nil {
		return nil, err
	}
	attrs := attrsExcept(row, "id", "category_id")
	attrs["price"] = price
	return []Instruction{
		UpsertNode(graphschema.LabelProduct, id, attrs),
		UpsertEdge(graphschema.RelInCategory, id, categoryID, "", nil),
	}, nil
}

func mapOrder(row source.Row) ([]Instruction, error) {
	id, ok := keyOf(row, "id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Order", "", "id is null")
	}
	customerID, ok := keyOf(row, "customer_id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Order", id, "customer_id is null")
	}
	return []Instruction{
		UpsertNode(graphschema.LabelOrder, id, attrsExcept(row, "id", "customer_id")),
		UpsertEdge(graphschema.RelPlaced, customerID, id, "", nil),
	}, nil
}

func mapOrderItem(row source.Row) ([]Instruction, error) {
	orderID, okOrder := keyOf(row, "order_id")
	productID, okProduct := keyOf(row, "product_id")
	rowID := orderID + "/" + productID
	if lineID, ok := keyOf(row, "id"); ok {
		rowID = lineID
	}
	if !okOrder {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "OrderItem", rowID, "order_id is null")
	}
	if !okProduct {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "OrderItem", rowID, "product_id is null")
	}
	qty, err := nonNegative(row["quantity"], "OrderItem", rowID, "quantity")
	if err != nil {
		return nil, err
	}
	if qty != math.Trunc(qty) || qty > math.MaxInt64 {
		return nil, pkgerrors.Row(pkgerrors.KindInvalidValue, "OrderItem", rowID, "quantity %v is not an integer", qty)
	}
	attrs := attrsExcept(row, "order_id", "product_id")
	attrs["quantity"] = int64(qty)
	return []Instruction{UpsertEdge(graphschema.RelContains, orderID, productID, "", attrs)}, nil
}

func mapEvent(row source.Row) ([]Instruction, error) {
	id, ok := keyOf(row, "id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Event", "", "id is null")
	}
	customerID, ok := keyOf(row, "customer_id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Event", id, "customer_id is null")
	}
	productID, ok := keyOf(row, "product_id")
	if !ok {
		return nil, pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Event", id, "product_id is null")
	}
	eventType, _ := row["event_type"].(string)
	return []Instruction{
		UpsertEdge(graphschema.EventRel(eventType), customerID, productID, id, attrsExcept(row, "id", "customer_id", "product_id")),
	}, nil
}

// keyOf renders an identifier column as a string. Integer keys use base 10.
func keyOf(row source.Row, col string) (string, bool) {
	switch v := row[col].(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		// Outside int64 range the conversion is undefined and distinct
		// keys would collide.
		if math.IsNaN(v) || math.IsInf(v, 0) || v < -(1<<63) || v >= 1<<63 {
			return "", false
		}
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func nonNegative(v any, entity, rowID, field string) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, pkgerrors.Row(pkgerrors.KindInvalidValue, entity, rowID, "%s is null", field)
	case float64:
		f = x
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case string:
		return 0, pkgerrors.Row(pkgerrors.KindInvalidValue, entity, rowID, "%s %q is not numeric", field, strings.TrimSpace(x))
	default:
		return 0, pkgerrors.Row(pkgerrors.KindInvalidValue, entity, rowID, "%s has non-numeric type %T", field, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, pkgerrors.Row(pkgerrors.KindInvalidValue, entity, rowID, "%s %v is not finite", field, f)
	}
	if f < 0 {
		return 0, pkgerrors.Row(pkgerrors.KindInvalidValue, entity, rowID, "%s %v is negative", field, f)
	}
	return f, nil
}

// attrsExcept copies every column but the key columns. Values pass through
// untouched.
func attrsExcept(row source.Row, skip ...string) map[string]any {
	attrs := make(map[string]any, len(row))
	for k, v := range row {
		if containsString(skip, k) {
			continue
		}
		attrs[k] = v
	}
	return attrs
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
