package responder

import "fmt"

// fallbackMenu is shown when nothing in the knowledge base clears the
// threshold and no contact details were shared. It is user-facing copy and
// the chat widget renders its markdown as is.
const fallbackMenu = "Thanks for reaching out! I'd love to help you.\n\n" +
	"You can ask me about:\n\n" +
	"**SEO Services:**\n" +
	"• Local SEO for small businesses\n" +
	"• SEO reports and tracking\n" +
	"• Our complete SEO solutions\n\n" +
	"**Social Media Marketing:**\n" +
	"• Which platforms we manage\n" +
	"• Content creation services\n" +
	"• Growth timelines\n\n" +
	"**Paid Advertising:**\n" +
	"• Google, Facebook & Instagram Ads\n" +
	"• Performance reports\n" +
	"• Budget management\n\n" +
	"**About BrandSetu Digital:**\n" +
	"• Our services\n" +
	"• Strategy creation\n" +
	"• Results timeline\n" +
	"• Branding services\n\n" +
	"**Getting Started:**\n" +
	"• How to begin\n" +
	"• Free consultation\n" +
	"• Flexible plans\n\n" +
	"**Contact Us:**\n" +
	"• Email, phone & website\n" +
	"• Get in touch\n\n" +
	"What would you like to know?"

const welcomeMessage = `Hey there! 👋 Welcome to BrandSetu Digital!

I'm your digital marketing assistant. I can help you with:

✅ SEO Services - Rank higher on Google
✅ Social Media Marketing - Grow your presence
✅ Paid Advertising - Generate leads with ads
✅ Branding & Strategy - Build your brand
✅ Getting Started - Free consultation

What would you like to know about?`

func contactAcknowledgement(contact string) string {
	return fmt.Sprintf("Thanks for sharing your contact details (%s). "+
		"Our team will reach out to you within 2 hours to discuss your needs.\n\n"+
		"In the meantime, feel free to ask me anything about our services.", contact)
}

// FallbackMenu returns the topic menu used when nothing matched.
func FallbackMenu() string {
	return fallbackMenu
}

// Welcome returns the greeting shown when a chat opens.
func Welcome() string {
	return welcomeMessage
}
