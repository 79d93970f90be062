package dataset_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aitools.app/recommender/internal/dataset"
	"aitools.app/recommender/internal/model"
)

var _ = Describe("Normalize", func() {
	It("maps Spanish source columns to canonical fields", func() {
		rec := dataset.Normalize(dataset.RawRecord{
			"Nombre de la herramienta": "ChatGPT",
			"Nivel de dificultad":      "Fácil",
			"Subcategorías":            "Texto",
			"Descripción":              "Asistente conversacional",
			"enlace":                   "https://chat.openai.com",
			"Tutorial":                 "https://youtu.be/x",
		})

		Expect(rec).To(Equal(model.ToolRecord{
			Name:            "ChatGPT",
			DifficultyLevel: "Fácil",
			Subcategory:     "Texto",
			Description:     "Asistente conversacional",
			Link:            "https://chat.openai.com",
			Tutorial:        "https://youtu.be/x",
		}))
	})

	It("maps English source columns to canonical fields", func() {
		rec := dataset.Normalize(dataset.RawRecord{
			"Tool Name":        "Midjourney",
			"Difficulty Level": "Medium",
			"Subcategory":      "Images",
			"Description":      "Image generation",
			"URL":              "https://midjourney.com",
			"tutorial link":    "https://youtu.be/y",
		})

		Expect(rec.Values()).To(Equal([]string{
			"Midjourney", "Medium", "Images", "Image generation", "https://midjourney.com", "https://youtu.be/y",
		}))
	})

	It("fills every missing field with an empty string", func() {
		rec := dataset.Normalize(dataset.RawRecord{"unrelated": "x"})

		Expect(rec).To(Equal(model.ToolRecord{}))
		Expect(rec.Values()).To(HaveLen(6))
		Expect(rec.Values()).To(HaveEach(BeEmpty()))
	})

	It("prefers the first alias in declared order", func() {
		rec := dataset.Normalize(dataset.RawRecord{
			"Nombre": "second",
			"name":   "first",
			"NAME":   "third",
		})
		Expect(rec.Name).To(Equal("first"))
	})

	It("skips aliases that are present but empty", func() {
		rec := dataset.Normalize(dataset.RawRecord{
			"name":   "",
			"nombre": "fallback",
		})
		Expect(rec.Name).To(Equal("fallback"))
	})

	It("matches column names case-sensitively", func() {
		rec := dataset.Normalize(dataset.RawRecord{"nAmE": "x", "enLACE": "y"})
		Expect(rec.Name).To(BeEmpty())
		Expect(rec.Link).To(BeEmpty())
	})

	It("keeps whitespace-only values as present", func() {
		rec := dataset.Normalize(dataset.RawRecord{"name": " ", "nombre": "x"})
		Expect(rec.Name).To(Equal(" "))
	})

	DescribeTable("resolves every declared alias",
		func(field dataset.Field) {
			for _, alias := range dataset.Aliases(field) {
				Expect(dataset.Resolve(dataset.RawRecord{alias: "v"}, field)).To(Equal("v"), "alias %q", alias)
			}
		},
		Entry("name", dataset.FieldName),
		Entry("difficulty_level", dataset.FieldDifficultyLevel),
		Entry("subcategory", dataset.FieldSubcategory),
		Entry("description", dataset.FieldDescription),
		Entry("link", dataset.FieldLink),
		Entry("tutorial", dataset.FieldTutorial),
	)

	It("returns a copy of the alias list", func() {
		a := dataset.Aliases(dataset.FieldName)
		a[0] = "mutated"
		Expect(dataset.Aliases(dataset.FieldName)[0]).To(Equal("name"))
	})

	It("lists fields in canonical order", func() {
		Expect(dataset.Fields).To(Equal([]dataset.Field{
			"name", "difficulty_level", "subcategory", "description", "link", "tutorial",
		}))
	})
})
