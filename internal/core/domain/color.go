package domain

// Category is one of the fixed liturgical colour classes.
type Category string

const (
	CategoryBlanco Category = "blanco"
	CategoryVerde  Category = "verde"
	CategoryRojo   Category = "rojo"
	CategoryMorado Category = "morado"
	CategoryRosado Category = "rosado"
	CategoryNegro  Category = "negro"
	CategoryDorado Category = "dorado"
	CategoryAzul   Category = "azul"
	CategoryNeutro Category = "neutro"
)

// Categories lists the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryBlanco,
		CategoryVerde,
		CategoryRojo,
		CategoryMorado,
		CategoryRosado,
		CategoryNegro,
		CategoryDorado,
		CategoryAzul,
		CategoryNeutro,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// HSV holds a decoded colour. Hue is in whole degrees [0,359].
type HSV struct {
	Hue        int     `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

type Meditation struct {
	Display  string `json:"display" yaml:"display"`
	Message  string `json:"message" yaml:"message"`
	Prayer   string `json:"prayer" yaml:"prayer"`
	Citation string `json:"citation" yaml:"citation"`
}
