package domain

// Fixtures: начальный каталог, которым заполняется пустая (или сброшенная) база.
type Fixtures struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}
