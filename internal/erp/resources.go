package erp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Resource maps an entity type to its REST endpoint and response shape
type Resource struct {
	// Name is the identifier used on the command line
	Name string
	// Path is the collection endpoint; items live at Path/{id}
	Path string
	// Singleton resources have no collection, only one document
	Singleton bool
	// newList returns a pointer to decode the collection into
	newList func() any
	// newItem returns a pointer to decode one item into
	newItem func() any
}

// Route is the client-side route that views this resource
func (r Resource) Route() string {
	return "/" + r.Name
}

// ItemPath returns the endpoint of one item
func (r Resource) ItemPath(id string) string {
	if r.Singleton || id == "" {
		return r.Path
	}
	return r.Path + "/" + url.PathEscape(id)
}

// DecodeList decodes a collection response into its typed shape
func (r Resource) DecodeList(data []byte) (any, error) {
	if r.Singleton {
		return r.DecodeItem(data)
	}
	return decodeInto(r.newList, data)
}

// DecodeItem decodes a single item response into its typed shape
func (r Resource) DecodeItem(data []byte) (any, error) {
	return decodeInto(r.newItem, data)
}

func decodeInto(factory func() any, data []byte) (any, error) {
	var target any
	if factory != nil {
		target = factory()
	} else {
		target = new(json.RawMessage)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return target, nil
}

func typed[T any]() (func() any, func() any) {
	return func() any { return new([]T) }, func() any { return new(T) }
}

func resource[T any](name, path string) Resource {
	list, item := typed[T]()
	return Resource{Name: name, Path: path, newList: list, newItem: item}
}

func opaque(name, path string) Resource {
	return Resource{Name: name, Path: path}
}

func singleton[T any](name, path string) Resource {
	_, item := typed[T]()
	return Resource{Name: name, Path: path, Singleton: true, newItem: item}
}

var registry = map[string]Resource{}

func register(resources ...Resource) {
	for _, r := range resources {
		registry[r.Name] = r
	}
}

func init() {
	register(
		opaque("orders", "/api/ordenes-produccion"),
		opaque("order-stations", "/api/ordenes-estacion"),
		opaque("stations", "/api/estaciones-produccion"),
		opaque("warehouses", "/api/bodegas"),
		opaque("products", "/api/productos"),
		opaque("lots", "/api/lotes-produccion"),
		opaque("inventory", "/api/inventario-lotes"),
		opaque("movements", "/api/movimientos-inventario"),
		opaque("cycle-counts", "/api/conteos-ciclicos"),
		opaque("reservations", "/api/reservas-material"),
		opaque("reorder-points", "/api/puntos-reorden"),
		opaque("units", "/api/unidades-medida"),
		opaque("boms", "/api/estructuras"),
		resource[Machine]("machines", "/api/maquinas"),
		resource[Depreciation]("depreciations", "/api/depreciaciones"),
		resource[CostCenter]("cost-centers", "/api/centros-costo"),
		resource[Incident]("incidents", "/api/incidencias"),
		resource[Role]("roles", "/api/roles"),
		resource[Tag]("tags", "/api/tags"),
		resource[Permission]("permissions", "/api/permissions"),
		resource[Account]("users", "/api/users"),
		resource[OrderCostReport]("order-costs", "/api/reportes/costos-orden"),
		resource[MaterialCostReport]("material-costs", "/api/reportes/costos-material"),
		resource[ProductivityIndicator]("productivity", "/api/reportes/productividad"),
		singleton[Dashboard]("dashboard", "/api/reportes/dashboard"),
	)
}

// Lookup finds a resource by name (case-insensitive)
func Lookup(name string) (Resource, error) {
	r, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Resource{}, fmt.Errorf("unknown resource '%s' (available: %s)", name, strings.Join(Names(), ", "))
	}
	return r, nil
}

// Names lists the registered resource names in order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MachineDepreciationChartPath is the endpoint of a machine's depreciation curve
func MachineDepreciationChartPath(machineID string) string {
	return "/api/maquinas/" + url.PathEscape(machineID) + "/depreciacion/grafico"
}
