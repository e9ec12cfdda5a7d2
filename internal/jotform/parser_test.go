package jotform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForm = `<!DOCTYPE html>
<html>
<head><title>Décharge de responsabilité</title>
<script src="https://cdn.jotfor.ms/static/prototype.forms.js"></script>
</head>
<body>
<form class="jotform-form" action="https://submit.jotform.com/submit/241234567890" method="post" id="241234567890">
  <input type="hidden" name="formID" value="241234567890" />
  <input type="hidden" id="JWTContainer" value="" />
  <div class="form-all">
    <ul class="form-section page-section">
      <li id="cid_1" class="form-input-wide" data-type="control_head">
        <h1 id="header_1" class="form-header">Formulaire de consentement</h1>
      </li>
      <li class="form-line jf-required" data-type="control_fullname" id="id_3">
        <label class="form-label" id="label_3" for="first_3">Nom complet<span class="form-required">*</span></label>
        <input type="text" id="first_3" name="q3_nomComplet[first]" />
        <input type="text" id="input_3_first" name="q3_nomComplet[first]" class="form-textbox validate[required]" />
        <input type="text" id="input_3_last" name="q3_nomComplet[last]" class="form-textbox validate[required]" />
      </li>
      <li class="form-line" data-type="control_email" id="id_4">
        <label class="form-label" id="label_4" for="input_4"> E-mail </label>
        <input type="email" id="input_4" name="q4_email" class="form-textbox" required="" />
      </li>
      <li class="form-line" data-type="control_radio" id="id_5">
        <label class="form-label" id="label_5">Enceinte ?</label>
        <input type="radio" id="input_5_0" name="q5_enceinte" value="Oui" />
        <input type="radio" id="input_5_1" name="q5_enceinte" value="Non" />
      </li>
      <li class="form-line" data-type="control_dropdown" id="id_6">
        <label class="form-label" id="label_6" for="input_6">Allergies</label>
        <select id="input_6" name="q6_allergies">
          <option value="">Choisir</option>
          <option value="Aucune">Aucune</option>
          <option value="Huiles essentielles">Huiles essentielles</option>
        </select>
      </li>
      <li class="form-line" data-type="control_textarea" id="id_7">
        <label class="form-label" id="label_7" for="input_7">Remarques</label>
        <textarea id="input_7" name="q7_remarques"></textarea>
      </li>
      <li class="form-line" data-type="control_button" id="id_2">
        <button id="input_2" type="submit" class="form-submit-button">Envoyer</button>
        <input type="submit" id="input_2_alt" value="Envoyer" />
      </li>
    </ul>
  </div>
</form>
<div class="formFooter"><a href="https://www.jotform.com/?utm_source=powered_by_jotform">Powered by Jotform</a></div>
<script>JotForm.init();</script>
</body>
</html>`

func TestParseForm(t *testing.T) {
	form, err := ParseForm(strings.NewReader(sampleForm))
	require.NoError(t, err)

	assert.Equal(t, "241234567890", form.ID)
	assert.Equal(t, "Formulaire de consentement", form.Title)
	require.Len(t, form.Fields, 5)

	name := form.Fields[0]
	assert.Equal(t, "3", name.ID)
	assert.Equal(t, "q3_nomComplet", name.Name)
	assert.Equal(t, "fullname", name.Type)
	assert.Equal(t, "Nom complet", name.Label)
	assert.True(t, name.Required)

	email := form.Fields[1]
	assert.Equal(t, "4", email.ID)
	assert.Equal(t, "E-mail", email.Label)
	assert.Equal(t, "email", email.Type)
	assert.True(t, email.Required)

	radio := form.Fields[2]
	assert.Equal(t, []string{"Oui", "Non"}, radio.Options)
	assert.False(t, radio.Required)

	dropdown := form.Fields[3]
	assert.Equal(t, "dropdown", dropdown.Type)
	assert.Equal(t, []string{"Aucune", "Huiles essentielles"}, dropdown.Options)

	assert.Equal(t, "textarea", form.Fields[4].Type)
}

func TestParseFormWithoutForm(t *testing.T) {
	_, err := ParseForm(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	assert.Error(t, err)
}

func TestQuestionID(t *testing.T) {
	tests := map[string]string{
		"input_3":       "3",
		"input_3_first": "3",
		"input_12_1":    "12",
		"input_abc":     "",
		"first_3":       "",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, questionID(in), in)
	}
}

func TestStripBranding(t *testing.T) {
	out, err := StripBranding(strings.NewReader(sampleForm))
	require.NoError(t, err)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "Powered by Jotform")
	assert.NotContains(t, out, "formFooter")
	assert.Contains(t, out, "submit.jotform.com", "form action is kept")
	assert.Contains(t, out, `name="q4_email"`)
}
