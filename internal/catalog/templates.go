package catalog

import "fmt"

var (
	paramMaterial = Param{Name: "название_материала", Title: "Material", Label: "Material name"}
	paramMaxPrice = Param{Name: "цена_материала", Title: "Price", Label: "Maximum price", Kind: KindFloat}
)

func nonBlank(p Param) Param {
	p.NonBlank = true
	return p
}

const sqlSupplierIDs = `SELECT Номер_склада FROM Склады WHERE id_поставщика = ?`

var templates = []*Template{
	{
		ID:         "sort-suppliers",
		Label:      "Sort materials by supplier",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Steps: []Step{{SQL: `
			SELECT P.*, M.Название_материала
			FROM Поставщики P
			JOIN Предприятие Pr ON P.id_поставщика = Pr.id_поставщика
			JOIN Материалы M ON Pr.id_предприятия = M.id_предприятия
			ORDER BY M.Название_материала, Pr.Имя_предприятия`}},
	},
	{
		ID:         "search-supplier",
		Label:      "Find supplier",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Params:     []Param{{Name: "name", Title: "Find supplier", Label: "Supplier name"}},
		Steps: []Step{{
			SQL:  `SELECT * FROM Поставщики WHERE Имя_поставщика = ?`,
			Bind: Binding{0},
		}},
	},
	{
		ID:         "material-by-price",
		Label:      "Material under price",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Params:     []Param{paramMaterial, paramMaxPrice},
		Steps: []Step{{
			SQL:  `SELECT * FROM Материалы WHERE Название_материала = ? AND Цена <= ?`,
			Bind: Binding{0, 1},
		}},
	},
	{
		ID:         "avg-price",
		Label:      "Average material price",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Params:     []Param{nonBlank(paramMaterial)},
		Steps: []Step{{
			SQL:  `SELECT AVG(Цена) AS Средняя_цена FROM Материалы WHERE Название_материала = ?`,
			Bind: Binding{0},
		}},
	},
	{
		ID:         "raise-price",
		Label:      "Raise material price in city",
		Shape:      ShapeMutation,
		ErrorTitle: "Update error",
		Params: []Param{
			paramMaterial,
			{Name: "percent", Title: "Percent", Label: "Increase, %", Kind: KindFloat},
			{Name: "city", Title: "City", Label: "City name"},
		},
		Steps: []Step{{
			SQL: `
			UPDATE Материалы
			SET Цена = Цена * (1 + ? / 100.0)
			WHERE Название_материала = ? AND id_предприятия IN (
				SELECT id_предприятия FROM Предприятие WHERE id_поставщика IN (
					SELECT id_поставщика FROM Поставщики WHERE Город = ?
				)
			)`,
			Bind: Binding{1, 0, 2},
		}},
		Success: func(args []any) string {
			return fmt.Sprintf("Price of %q raised by %v%% in %s.", args[0], args[1], args[2])
		},
	},
	{
		ID:         "delete-supplier",
		Label:      "Delete supplier",
		Shape:      ShapeMutation,
		ErrorTitle: "Delete error",
		Params:     []Param{{Name: "id", Title: "Delete", Label: "Supplier id", Kind: KindInt}},
		Steps: []Step{
			{SQL: `DELETE FROM Материалы WHERE Номер_склада IN (` + sqlSupplierIDs + `)`, Bind: Binding{0}},
			{SQL: `DELETE FROM ПокупателиСклады WHERE Номер_склада IN (` + sqlSupplierIDs + `)`, Bind: Binding{0}},
			{SQL: `DELETE FROM Склады WHERE id_поставщика = ?`, Bind: Binding{0}},
			{SQL: `DELETE FROM Предприятие WHERE id_поставщика = ?`, Bind: Binding{0}},
			{SQL: `DELETE FROM Поставщики WHERE id_поставщика = ?`, Bind: Binding{0}},
		},
		Success: func(args []any) string {
			return fmt.Sprintf("Supplier with id %v deleted.", args[0])
		},
	},
	{
		ID:         "integrity-check",
		Label:      "Integrity check",
		Shape:      ShapeIntegrity,
		ErrorTitle: "Check error",
		Params:     []Param{nonBlank(Param{Name: "material", Title: "Integrity check", Label: "Material name"})},
		Steps: []Step{{
			SQL: `
			SELECT p.id_поставщика, p.Имя_поставщика
			FROM Поставщики p
			WHERE p.id_поставщика NOT IN (
				SELECT DISTINCT s.id_поставщика
				FROM Склады s
				JOIN Материалы m ON s.Номер_склада = m.Номер_склада
				WHERE m.Название_материала = ?
			)`,
			Bind: Binding{0},
		}},
		Success: func(args []any) string {
			return fmt.Sprintf("Every supplier stocks at least one material named %q.", args[0])
		},
		Violation: func(args []any, rows int) string {
			return fmt.Sprintf("%d supplier(s) stock no material named %q.", rows, args[0])
		},
	},
	{
		ID:         "grouped-report",
		Label:      "Supplier report",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Steps: []Step{{SQL: `
			SELECT P.Имя_поставщика, M.Название_материала, M.Цена
			FROM Поставщики P
			JOIN Предприятие Pr ON P.id_поставщика = Pr.id_поставщика
			JOIN Материалы M ON Pr.id_предприятия = M.id_предприятия
			ORDER BY P.Имя_поставщика`}},
	},
	{
		ID:         "supplier-card",
		Label:      "Supplier card index",
		Shape:      ShapeSelect,
		ErrorTitle: "Query error",
		Steps:      []Step{{SQL: `SELECT * FROM Поставщики`}},
	},
	{
		ID:         "material-prices",
		Label:      "Stored procedure: material prices",
		Shape:      ShapeProcedure,
		ErrorTitle: "Procedure error",
		Procedure:  "dbo.ЦеныМатериалов",
		Params: []Param{
			nonBlank(Param{Name: paramMaterial.Name, Title: "Procedure", Label: "Material name"}),
			{Name: paramMaxPrice.Name, Title: "Price", Label: "Maximum price", Kind: KindFloat},
		},
	},
}
